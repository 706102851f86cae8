package users

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// UserController handles user CRUD over JSON. Route guards are applied at
// registration time; handlers assume the principal already passed them.
type UserController struct {
	Logger       Logger
	Repo         RepositoryManager
	ErrorHandler router.ErrorHandler
}

func NewUserController(repo RepositoryManager, logger Logger) *UserController {
	if logger == nil {
		logger = defaultLogger().GetLogger("users.http.users")
	}

	return &UserController{
		Logger:       logger,
		Repo:         repo,
		ErrorHandler: NewJSONErrorHandler(logger),
	}
}

// RegisterRoutes mounts the user endpoints with the given guards.
func (u *UserController) RegisterRoutes(group RouteRegistrar, adminOnly, selfOrAdmin router.MiddlewareFunc) {
	group.Get("/users", u.List, adminOnly).SetName("users.list")
	group.Get("/users/:id", u.Show, selfOrAdmin).SetName("users.show")
	group.Put("/users/:id", u.Update, selfOrAdmin).SetName("users.update")
	group.Delete("/users/:id", u.Delete, adminOnly).SetName("users.delete")
}

// UserResponse is the wire shape of a user record.
type UserResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

func (u *UserController) userResponse(ctx router.Context, record *User) (UserResponse, error) {
	roles, err := u.Repo.Roles().NamesOf(ctx.Context(), record.ID)
	if err != nil {
		return UserResponse{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user roles")
	}

	return UserResponse{
		ID:        record.ID.String(),
		Username:  record.Username,
		Email:     record.Email,
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Roles:     roles,
	}, nil
}

// List returns a page of users.
func (u *UserController) List(ctx router.Context) error {
	limit, _ := strconv.Atoi(ctx.Query("limit", "25"))
	offset, _ := strconv.Atoi(ctx.Query("offset", "0"))

	records, total, err := u.Repo.Users().ListPage(ctx.Context(), limit, offset)
	if err != nil {
		return u.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users"))
	}

	items := make([]UserResponse, 0, len(records))
	for _, record := range records {
		item, err := u.userResponse(ctx, record)
		if err != nil {
			return u.ErrorHandler(ctx, err)
		}
		items = append(items, item)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

// Show returns a single user by id.
func (u *UserController) Show(ctx router.Context) error {
	record, err := u.findUser(ctx)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	payload, err := u.userResponse(ctx, record)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, payload)
}

// UpdateUserRequest carries the mutable user fields.
type UpdateUserRequest struct {
	Email     string `form:"email" json:"email"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
}

// Validate will run validation rules
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
	)
}

// Update mutates the mutable fields of a user.
func (u *UserController) Update(ctx router.Context) error {
	record, err := u.findUser(ctx)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	payload := new(UpdateUserRequest)
	if err := ctx.Bind(payload); err != nil {
		return u.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return u.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user payload").
			WithCode(goerrors.CodeBadRequest))
	}

	if payload.Email != "" {
		record.Email = payload.Email
	}
	if payload.FirstName != "" {
		record.FirstName = payload.FirstName
	}
	if payload.LastName != "" {
		record.LastName = payload.LastName
	}

	updated, err := u.Repo.Users().Update(ctx.Context(), record, repository.UpdateByID(record.ID.String()))
	if err != nil {
		return u.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user"))
	}

	response, err := u.userResponse(ctx, updated)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, response)
}

// Delete soft deletes a user.
func (u *UserController) Delete(ctx router.Context) error {
	record, err := u.findUser(ctx)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	if err := u.Repo.Users().DeleteByID(ctx.Context(), record.ID); err != nil {
		return u.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user"))
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "User deleted",
	})
}

func (u *UserController) findUser(ctx router.Context) (*User, error) {
	id, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return nil, goerrors.New("invalid user id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	record, err := u.Repo.Users().GetByID(ctx.Context(), id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, goerrors.New("user not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user")
	}

	return record, nil
}
