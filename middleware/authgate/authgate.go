package authgate

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-users"
)

// ErrTokenMissing marks requests that carried no bearer token at all, as
// opposed to requests with a token that failed validation.
var ErrTokenMissing = errors.New("missing or malformed token")

type Config struct {
	// Validator checks raw tokens. Required.
	Validator users.TokenValidator

	// Resolver reloads the principal from the store on every request so role
	// changes apply before token expiry. Required.
	Resolver users.PrincipalResolver

	// Filter skips the guard entirely when it returns true.
	Filter func(router.Context) bool

	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler

	// ContextKey is the router locals key for the principal.
	ContextKey string

	// TokenLookup is a comma separated list of extractor sources, e.g.
	// "header:Authorization,cookie:token,query:auth_token,param:token".
	TokenLookup string
	AuthScheme  string

	// Optional lets requests without a token through unauthenticated. A
	// present but invalid token still rejects.
	Optional bool

	// RequiredRole must be held by the principal.
	RequiredRole string

	// AnyOfRoles passes when the principal holds at least one.
	AnyOfRoles []string

	// SelfParam names a path parameter holding a user id; the request passes
	// when the principal is that user, or holds SelfOverrideRole.
	SelfParam        string
	SelfOverrideRole string

	Logger users.Logger
}

func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil || raw == "" {
				if cfg.Optional {
					return ctx.Next()
				}
				return cfg.ErrorHandler(ctx, users.ErrUnauthenticated)
			}

			claims, err := cfg.Validator.Validate(raw)
			if err != nil {
				// the validator already logged the discriminated kind
				return cfg.ErrorHandler(ctx, users.ErrUnauthenticated)
			}

			principal, err := cfg.Resolver.ResolvePrincipal(ctx.Context(), claims.Subject())
			if err != nil {
				if users.IsAuthFailure(err) || isNotFound(err) {
					cfg.Logger.Info("token subject no longer resolves", "subject", claims.Subject())
					return cfg.ErrorHandler(ctx, users.ErrUnauthenticated)
				}
				cfg.Logger.Error("principal reload failed", "error", err)
				return cfg.ErrorHandler(ctx, users.ErrDependencyUnavailable)
			}

			if err := cfg.authorize(ctx, principal); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, principal)
			ctx.SetContext(users.WithPrincipalContext(
				users.WithClaimsContext(ctx.Context(), claims),
				principal,
			))

			return cfg.SuccessHandler(ctx)
		}
	}
}

// RequireRole guards a route behind a single role.
func RequireRole(base Config, role string) router.MiddlewareFunc {
	base.RequiredRole = role
	return New(base)
}

// RequireAnyRole guards a route behind any of the given roles.
func RequireAnyRole(base Config, roles ...string) router.MiddlewareFunc {
	base.AnyOfRoles = roles
	return New(base)
}

// RequireSelfOrRole guards a route so only the user named by the path param,
// or a principal holding the override role, gets through.
func RequireSelfOrRole(base Config, param, overrideRole string) router.MiddlewareFunc {
	base.SelfParam = param
	base.SelfOverrideRole = overrideRole
	return New(base)
}

// Optional returns a guard that attaches the principal when a valid token is
// present and otherwise lets the request through unauthenticated.
func Optional(base Config) router.MiddlewareFunc {
	base.Optional = true
	return New(base)
}

func (cfg *Config) authorize(ctx router.Context, principal *users.Principal) error {
	if cfg.RequiredRole != "" && !principal.HasRole(cfg.RequiredRole) {
		return users.ErrForbidden
	}

	if len(cfg.AnyOfRoles) > 0 && !principal.HasAnyRole(cfg.AnyOfRoles...) {
		return users.ErrForbidden
	}

	if cfg.SelfParam != "" {
		subject := ctx.Param(cfg.SelfParam, "")
		if subject != principal.ID() &&
			(cfg.SelfOverrideRole == "" || !principal.HasRole(cfg.SelfOverrideRole)) {
			return users.ErrForbidden
		}
	}

	return nil
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("authgate: Validator is required")
	}

	if cfg.Resolver == nil {
		panic("authgate: Resolver is required")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.Logger == nil {
		_, cfg.Logger = users.ResolveLogger("authgate", nil, nil)
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = users.NewJSONErrorHandler(cfg.Logger)
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = users.DefaultContextKey
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = "header:" + router.HeaderAuthorization
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func isNotFound(err error) bool {
	return goerrors.IsNotFound(err)
}
