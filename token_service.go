package users

import (
	stderrors "errors"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService issues and validates signed, time-bounded identity tokens.
type TokenService interface {
	Issue(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// MinSigningKeyBytes is the smallest accepted key size: 256 bits for HS256.
// Shipping a shorter secret is a deployment error, not a supported mode.
const MinSigningKeyBytes = 32

// DefaultTokenTTL is used when the configured time-to-live is zero.
const DefaultTokenTTL = 24 * time.Hour

// TokenServiceImpl implements the TokenService interface.
type TokenServiceImpl struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenService creates a new TokenService instance. The signing key must
// carry at least MinSigningKeyBytes of material.
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string, audience jwt.ClaimStrings, logger Logger) (TokenService, error) {
	if len(signingKey) < MinSigningKeyBytes {
		return nil, ErrWeakSigningKey
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	if logger == nil {
		logger = defaultLogger().GetLogger("users.token_service")
	}

	return &TokenServiceImpl{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
	}, nil
}

// DecodeSigningKey turns a configured secret into key material. Base64
// encoded secrets are decoded first; raw secrets are used as-is. Either way
// the result must reach MinSigningKeyBytes.
func DecodeSigningKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrWeakSigningKey
	}

	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) >= MinSigningKeyBytes {
		return decoded, nil
	}

	raw := []byte(secret)
	if len(raw) < MinSigningKeyBytes {
		return nil, ErrWeakSigningKey
	}

	return raw, nil
}

// Issue creates a signed token for the given identity. The subject is the
// username; uid and roles are carried as informational claims.
func (ts *TokenServiceImpl) Issue(identity Identity) (string, error) {
	if identity == nil || identity.Username() == "" {
		return "", errors.New("identity with a username is required", errors.CategoryBadInput)
	}

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.Username(),
			Audience:  ts.copyAudience(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
		UID:   identity.ID(),
		Roles: append([]string(nil), identity.Roles()...),
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Parsing is pinned to HMAC signing methods; failures are discriminated into
// expired, unsupported, invalid-signature, and malformed kinds.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		kind := classifyTokenError(err)
		ts.logger.Info("token validation failed", "kind", kind.TextCode, "error", err)
		return nil, cloneWithSource(kind, err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("token validation could not decode claims")
	return nil, ErrTokenMalformed
}

func (ts *TokenServiceImpl) copyAudience() jwt.ClaimStrings {
	if len(ts.audience) == 0 {
		return nil
	}
	aud := make(jwt.ClaimStrings, len(ts.audience))
	copy(aud, ts.audience)
	return aud
}

func classifyTokenError(err error) *errors.Error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case stderrors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenInvalidSignature
	case stderrors.Is(err, jwt.ErrTokenUnverifiable):
		// keyfunc rejections land here, including non-HMAC methods
		return ErrTokenUnsupported
	case stderrors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenMalformed
	}
}
