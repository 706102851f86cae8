package users

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Identity holds the attributes of an authenticated identity.
type Identity interface {
	ID() string
	Username() string
	Email() string
	Roles() []string
}

// Authenticator holds methods to deal with authentication.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	TokenService() TokenService
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token    string
	Identity Identity
}

// IdentityProvider ensures we have a store to retrieve auth identities.
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, username, password string) (Identity, error)
	FindIdentityByUsername(ctx context.Context, username string) (Identity, error)
}

// PrincipalResolver reloads the current principal for a validated token
// subject. Role membership always comes from the store, never the token.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, subject string) (*Principal, error)
}

// CredentialStore is the persistence boundary the authentication flow
// consumes. RepositoryManager satisfies it.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	RolesOf(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Config holds auth options.
type Config interface {
	GetSigningKey() string
	GetTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
}

// PasswordAuthenticator authenticates passwords.
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}
