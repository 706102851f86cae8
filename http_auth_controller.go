package users

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controllers.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AuthController handles registration and login over JSON.
type AuthController struct {
	Logger       Logger
	Repo         RepositoryManager
	Auther       Authenticator
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithAuthRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAuthErrorHandler(handler router.ErrorHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ErrorHandler = handler
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defaultLogger().GetLogger("users.http.auth"),
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("missing RepositoryManager in auth controller")
	}

	if c.Auther == nil {
		panic("missing Authenticator in auth controller")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = NewJSONErrorHandler(c.Logger)
	}

	return c
}

// RegisterRoutes mounts the auth endpoints on the given group.
func (a *AuthController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/auth/register", a.Register).SetName("auth.register")
	group.Post("/auth/login", a.Login).SetName("auth.login")
}

// Register creates a new account with the default role.
func (a *AuthController) Register(ctx router.Context) error {
	payload := new(RegisterUserMessage)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register bind error", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if _, err := registerUser.Execute(ctx.Context(), *payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "User registered successfully!",
	})
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// JwtResponse is the login response body.
type JwtResponse struct {
	Token    string   `json:"token"`
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// Login verifies credentials and returns a signed token.
func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login bind error", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	result, err := a.Auther.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		if IsAuthFailure(err) {
			return a.ErrorHandler(ctx, ErrInvalidCredentials)
		}
		return a.ErrorHandler(ctx, err)
	}

	identity := result.Identity

	return ctx.JSON(router.StatusOK, JwtResponse{
		Token:    result.Token,
		ID:       identity.ID(),
		Username: identity.Username(),
		Email:    identity.Email(),
		Roles:    identity.Roles(),
	})
}
