package users

import (
	"context"
	"reflect"

	"github.com/golang-jwt/jwt/v5"
)

// Auther authenticates credentials through an IdentityProvider and issues
// tokens through a TokenService.
type Auther struct {
	provider     IdentityProvider
	logger       Logger
	tokenService TokenService
}

// NewAuthenticator returns a new Authenticator. The configured signing key
// is decoded and has to carry enough material for HS256.
func NewAuthenticator(provider IdentityProvider, opts Config) (*Auther, error) {
	signingKey, err := DecodeSigningKey(opts.GetSigningKey())
	if err != nil {
		return nil, err
	}

	logger := defaultLogger().GetLogger("users.authenticator")

	tokenService, err := NewTokenService(
		signingKey,
		opts.GetTokenTTL(),
		opts.GetIssuer(),
		jwt.ClaimStrings(opts.GetAudience()),
		logger,
	)
	if err != nil {
		return nil, err
	}

	return &Auther{
		provider:     provider,
		logger:       logger,
		tokenService: tokenService,
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a signed token together with
// the verified identity. Credentials failures come back as
// ErrInvalidCredentials regardless of whether the account exists.
func (s *Auther) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	identity, err := s.provider.VerifyIdentity(ctx, username, password)
	if err != nil {
		if IsAuthFailure(err) {
			s.logger.Info("login rejected", "username", username)
		} else {
			s.logger.Error("login verify identity error", "error", err)
		}
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("login identity is nil or zero value")
		return nil, ErrIdentityNotFound
	}

	token, err := s.tokenService.Issue(identity)
	if err != nil {
		s.logger.Error("login failed to issue token", "error", err)
		return nil, err
	}

	return &LoginResult{Token: token, Identity: identity}, nil
}

// Validate checks a raw token and returns its claims.
func (s *Auther) Validate(tokenString string) (AuthClaims, error) {
	return s.tokenService.Validate(tokenString)
}

var _ Authenticator = (*Auther)(nil)
var _ TokenValidator = (*Auther)(nil)
