package users

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// ProfileController handles profile reads and upserts over JSON.
type ProfileController struct {
	Logger       Logger
	Repo         RepositoryManager
	ContextKey   string
	ErrorHandler router.ErrorHandler
}

func NewProfileController(repo RepositoryManager, logger Logger) *ProfileController {
	if logger == nil {
		logger = defaultLogger().GetLogger("users.http.profiles")
	}

	return &ProfileController{
		Logger:       logger,
		Repo:         repo,
		ContextKey:   DefaultContextKey,
		ErrorHandler: NewJSONErrorHandler(logger),
	}
}

// RegisterRoutes mounts the profile endpoints with the given guards.
func (p *ProfileController) RegisterRoutes(group RouteRegistrar, authenticated, selfOrAdmin router.MiddlewareFunc) {
	group.Get("/me", p.Me, authenticated).SetName("profiles.me")
	group.Get("/profiles/:userId", p.Show, authenticated).SetName("profiles.show")
	group.Put("/profiles/:userId", p.Upsert, selfOrAdmin).SetName("profiles.upsert")
}

// ProfileResponse is the wire shape of a profile record.
type ProfileResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Location    string `json:"location,omitempty"`
}

func profileResponse(record *Profile) ProfileResponse {
	return ProfileResponse{
		UserID:      record.UserID.String(),
		DisplayName: record.DisplayName,
		Bio:         record.Bio,
		AvatarURL:   record.AvatarURL,
		Location:    record.Location,
	}
}

// Me returns the authenticated user together with their profile, creating
// nothing on the way.
func (p *ProfileController) Me(ctx router.Context) error {
	principal, ok := GetRouterPrincipal(ctx, p.ContextKey)
	if !ok {
		return p.ErrorHandler(ctx, ErrUnauthenticated)
	}

	payload := map[string]any{
		"id":       principal.ID(),
		"username": principal.Username(),
		"email":    principal.Email(),
		"roles":    principal.Roles(),
	}

	profile, err := p.Repo.Profiles().GetByUserID(ctx.Context(), principal.UUID())
	if err == nil {
		payload["profile"] = profileResponse(profile)
	} else if !repository.IsRecordNotFound(err) {
		return p.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load profile"))
	}

	return ctx.JSON(router.StatusOK, payload)
}

// Show returns the profile for a user id.
func (p *ProfileController) Show(ctx router.Context) error {
	userID, err := uuid.Parse(ctx.Param("userId", ""))
	if err != nil {
		return p.ErrorHandler(ctx, goerrors.New("invalid user id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest))
	}

	profile, err := p.Repo.Profiles().GetByUserID(ctx.Context(), userID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return p.ErrorHandler(ctx, goerrors.New("profile not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound))
		}
		return p.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load profile"))
	}

	return ctx.JSON(router.StatusOK, profileResponse(profile))
}

// UpsertProfileRequest carries the mutable profile fields.
type UpsertProfileRequest struct {
	DisplayName string `form:"display_name" json:"display_name"`
	Bio         string `form:"bio" json:"bio"`
	AvatarURL   string `form:"avatar_url" json:"avatar_url"`
	Location    string `form:"location" json:"location"`
}

// Validate will run validation rules
func (r UpsertProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.Length(0, 200)),
		validation.Field(&r.Bio, validation.Length(0, 2000)),
		validation.Field(&r.AvatarURL, is.URL),
		validation.Field(&r.Location, validation.Length(0, 200)),
	)
}

// Upsert creates the profile on first write and updates it afterwards.
func (p *ProfileController) Upsert(ctx router.Context) error {
	userID, err := uuid.Parse(ctx.Param("userId", ""))
	if err != nil {
		return p.ErrorHandler(ctx, goerrors.New("invalid user id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest))
	}

	payload := new(UpsertProfileRequest)
	if err := ctx.Bind(payload); err != nil {
		return p.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return p.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid profile payload").
			WithCode(goerrors.CodeBadRequest))
	}

	record := &Profile{
		UserID:      userID,
		DisplayName: payload.DisplayName,
		Bio:         payload.Bio,
		AvatarURL:   payload.AvatarURL,
		Location:    payload.Location,
	}

	saved, err := p.Repo.Profiles().UpsertForUser(ctx.Context(), record)
	if err != nil {
		return p.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to save profile"))
	}

	return ctx.JSON(router.StatusOK, profileResponse(saved))
}
