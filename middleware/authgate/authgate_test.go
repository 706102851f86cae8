package authgate_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-users"
	"github.com/goliatone/go-users/middleware/authgate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

// stubResolver maps subjects to principals without a store.
type stubResolver struct {
	principals map[string]*users.Principal
	err        error
}

func (s *stubResolver) ResolvePrincipal(ctx context.Context, subject string) (*users.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	principal, ok := s.principals[subject]
	if !ok {
		return nil, users.ErrIdentityNotFound
	}
	return principal, nil
}

func newPrincipal(t *testing.T, username string, roles ...string) *users.Principal {
	t.Helper()
	return users.NewPrincipal(&users.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
	}, roles)
}

func newGuardFixture(t *testing.T, principals ...*users.Principal) (users.TokenService, authgate.Config) {
	t.Helper()

	service, err := users.NewTokenService(testSigningKey, time.Hour, "", nil, nil)
	require.NoError(t, err)

	resolver := &stubResolver{principals: map[string]*users.Principal{}}
	for _, p := range principals {
		resolver.principals[p.Username()] = p
	}

	return service, authgate.Config{
		Validator: service,
		Resolver:  resolver,
	}
}

func issueToken(t *testing.T, service users.TokenService, identity users.Identity) string {
	t.Helper()

	token, err := service.Issue(identity)
	require.NoError(t, err)
	return token
}

// capturingHandler records the error handed to the guard's error handler.
func capturingHandler(captured *error) router.ErrorHandler {
	return func(ctx router.Context, err error) error {
		*captured = err
		return nil
	}
}

func nopHandler(ctx router.Context) error { return nil }

func TestGuardMissingTokenRejectsWithJSON(t *testing.T) {
	_, cfg := newGuardFixture(t)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	var body map[string]string
	ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]string)
	}).Return(nil)

	err := authgate.New(cfg)(nopHandler)(ctx)
	require.NoError(t, err)
	assert.False(t, ctx.NextCalled)
	assert.NotEmpty(t, body["error"])
}

func TestGuardValidTokenAttachesPrincipal(t *testing.T) {
	admin := newPrincipal(t, "ada", users.RoleUser, users.RoleAdmin)
	service, cfg := newGuardFixture(t, admin)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer " + issueToken(t, service, admin))
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything).Return()

	var stored *users.Principal
	ctx.On("Locals", users.DefaultContextKey, mock.Anything).Run(func(args mock.Arguments) {
		stored, _ = args.Get(1).(*users.Principal)
	}).Return(nil)

	err := authgate.New(cfg)(nopHandler)(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)

	require.NotNil(t, stored)
	assert.Equal(t, "ada", stored.Username())
	assert.True(t, stored.HasRole(users.RoleAdmin))
}

func TestGuardRejectsTamperedToken(t *testing.T) {
	admin := newPrincipal(t, "ada", users.RoleAdmin)
	_, cfg := newGuardFixture(t, admin)

	foreign, err := users.NewTokenService([]byte("ffffffffffffffffffffffffffffffff"), time.Hour, "", nil, nil)
	require.NoError(t, err)

	var captured error
	cfg.ErrorHandler = capturingHandler(&captured)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer " + issueToken(t, foreign, admin))

	require.NoError(t, authgate.New(cfg)(nopHandler)(ctx))
	assert.False(t, ctx.NextCalled)
	assert.ErrorIs(t, captured, users.ErrUnauthenticated)
}

func TestGuardOptionalLetsMissingTokenThrough(t *testing.T) {
	_, cfg := newGuardFixture(t)

	var captured error
	cfg.ErrorHandler = capturingHandler(&captured)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	require.NoError(t, authgate.Optional(cfg)(nopHandler)(ctx))
	assert.True(t, ctx.NextCalled)
	assert.NoError(t, captured)
}

func TestGuardOptionalStillRejectsGarbageToken(t *testing.T) {
	_, cfg := newGuardFixture(t)

	var captured error
	cfg.ErrorHandler = capturingHandler(&captured)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer not.a.token")

	require.NoError(t, authgate.Optional(cfg)(nopHandler)(ctx))
	assert.False(t, ctx.NextCalled)
	assert.ErrorIs(t, captured, users.ErrUnauthenticated)
}

func TestGuardRequiredRole(t *testing.T) {
	member := newPrincipal(t, "bob", users.RoleUser)
	service, cfg := newGuardFixture(t, member)

	var captured error
	cfg.ErrorHandler = capturingHandler(&captured)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer " + issueToken(t, service, member))
	ctx.On("Context").Return(context.Background())

	require.NoError(t, authgate.RequireRole(cfg, users.RoleAdmin)(nopHandler)(ctx))
	assert.False(t, ctx.NextCalled)

	// authenticated but lacking the role is a 403, not a 401
	assert.ErrorIs(t, captured, users.ErrForbidden)
	var rich *errors.Error
	require.True(t, errors.As(captured, &rich))
	assert.Equal(t, errors.CategoryAuthz, rich.Category)
}

func TestGuardAnyOfRoles(t *testing.T) {
	moderator := newPrincipal(t, "mia", users.RoleUser, users.RoleModerator)
	service, cfg := newGuardFixture(t, moderator)

	var captured error
	cfg.ErrorHandler = capturingHandler(&captured)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer " + issueToken(t, service, moderator))
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything).Return()
	ctx.On("Locals", users.DefaultContextKey, mock.Anything).Return(nil)

	require.NoError(t, authgate.RequireAnyRole(cfg, users.RoleModerator, users.RoleAdmin)(nopHandler)(ctx))
	assert.True(t, ctx.NextCalled)
	assert.NoError(t, captured)
}

func TestGuardSelfOrRole(t *testing.T) {
	owner := newPrincipal(t, "ada", users.RoleUser)
	admin := newPrincipal(t, "root", users.RoleAdmin)
	service, cfg := newGuardFixture(t, owner, admin)

	tests := []struct {
		name      string
		principal *users.Principal
		paramID   string
		allowed   bool
	}{
		{name: "owner accesses own resource", principal: owner, paramID: owner.ID(), allowed: true},
		{name: "admin accesses any resource", principal: admin, paramID: owner.ID(), allowed: true},
		{name: "other user is rejected", principal: owner, paramID: admin.ID(), allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured error
			guardCfg := cfg
			guardCfg.ErrorHandler = capturingHandler(&captured)

			ctx := router.NewMockContext()
			ctx.ParamsM["id"] = tt.paramID
			ctx.On("GetString", "Authorization", "").Return("Bearer " + issueToken(t, service, tt.principal))
			ctx.On("Context").Return(context.Background())
			ctx.On("SetContext", mock.Anything).Return()
			ctx.On("Locals", users.DefaultContextKey, mock.Anything).Return(nil)

			guard := authgate.RequireSelfOrRole(guardCfg, "id", users.RoleAdmin)
			require.NoError(t, guard(nopHandler)(ctx))

			if tt.allowed {
				assert.True(t, ctx.NextCalled)
				assert.NoError(t, captured)
				return
			}
			assert.False(t, ctx.NextCalled)
			assert.ErrorIs(t, captured, users.ErrForbidden)
		})
	}
}

func TestGuardRevokedSubjectRejected(t *testing.T) {
	ghost := newPrincipal(t, "ghost", users.RoleUser)
	service, cfg := newGuardFixture(t)

	var captured error
	cfg.ErrorHandler = capturingHandler(&captured)

	// token is valid but the account behind it is gone
	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer " + issueToken(t, service, ghost))
	ctx.On("Context").Return(context.Background())

	require.NoError(t, authgate.New(cfg)(nopHandler)(ctx))
	assert.False(t, ctx.NextCalled)
	assert.ErrorIs(t, captured, users.ErrUnauthenticated)
}

func TestGuardResolverOutageIsNotUnauthorized(t *testing.T) {
	admin := newPrincipal(t, "ada", users.RoleAdmin)
	service, cfg := newGuardFixture(t, admin)

	resolver := &stubResolver{err: errors.Wrap(fmt.Errorf("connection refused"), errors.CategoryInternal, "store unavailable")}
	cfg.Resolver = resolver

	var captured error
	cfg.ErrorHandler = capturingHandler(&captured)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("Bearer " + issueToken(t, service, admin))
	ctx.On("Context").Return(context.Background())

	require.NoError(t, authgate.New(cfg)(nopHandler)(ctx))
	assert.False(t, ctx.NextCalled)
	assert.ErrorIs(t, captured, users.ErrDependencyUnavailable)
}

func TestGuardFilterSkips(t *testing.T) {
	_, cfg := newGuardFixture(t)
	cfg.Filter = func(router.Context) bool { return true }

	ctx := router.NewMockContext()

	require.NoError(t, authgate.New(cfg)(nopHandler)(ctx))
	assert.True(t, ctx.NextCalled)
}

func TestGetExtractorsParsesLookup(t *testing.T) {
	extractors := authgate.GetExtractors("header:Authorization,query:auth_token,cookie:token,bogus")
	assert.Len(t, extractors, 3)
}
