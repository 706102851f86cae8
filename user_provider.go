package users

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserProvider verifies credentials against a CredentialStore and builds
// principals for token issuance and guard checks.
type UserProvider struct {
	store    CredentialStore
	logger   Logger
	provider LoggerProvider
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store CredentialStore) *UserProvider {
	loggerProvider, logger := ResolveLogger("users.provider", nil, nil)
	return &UserProvider{
		store:    store,
		logger:   logger,
		provider: loggerProvider,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.provider, u.logger = ResolveLogger("users.provider", u.provider, l)
	return u
}

// WithLoggerProvider overrides the logger provider used by the user provider.
func (u *UserProvider) WithLoggerProvider(provider LoggerProvider) *UserProvider {
	u.provider, u.logger = ResolveLogger("users.provider", provider, u.logger)
	return u
}

// VerifyIdentity finds the user, compares the password, and returns the
// identity. Unknown usernames and wrong passwords are indistinguishable to
// the caller, and both take a bcrypt comparison.
func (u *UserProvider) VerifyIdentity(ctx context.Context, username, password string) (Identity, error) {
	user, err := u.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			// burn a comparison so missing accounts cost the same
			_ = ComparePasswordAndHash(password, RandomPasswordHash())
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		_ = ComparePasswordAndHash(password, RandomPasswordHash())
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, err
	}

	roles, err := u.store.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load roles during verification")
	}

	return NewPrincipal(user, roles), nil
}

// FindIdentityByUsername looks up an identity without checking credentials.
func (u *UserProvider) FindIdentityByUsername(ctx context.Context, username string) (Identity, error) {
	user, err := u.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, cloneWithSource(ErrIdentityNotFound, err)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}

	if user == nil {
		return nil, ErrIdentityNotFound
	}

	roles, err := u.store.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load roles")
	}

	return NewPrincipal(user, roles), nil
}

// ResolvePrincipal maps a token subject back to a live principal with
// freshly loaded roles. Guards call this on every request so that role
// revocations take effect before token expiry.
func (u *UserProvider) ResolvePrincipal(ctx context.Context, subject string) (*Principal, error) {
	identity, err := u.FindIdentityByUsername(ctx, subject)
	if err != nil {
		return nil, err
	}

	principal, ok := identity.(*Principal)
	if !ok {
		return nil, errors.New("identity is not a principal", errors.CategoryInternal)
	}

	return principal, nil
}

var _ IdentityProvider = (*UserProvider)(nil)
var _ PrincipalResolver = (*UserProvider)(nil)
