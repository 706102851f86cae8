package users

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds          = "INVALID_CREDENTIALS"
	TextCodeDuplicateUsername     = "DUPLICATE_USERNAME"
	TextCodeDuplicateEmail        = "DUPLICATE_EMAIL"
	TextCodeTokenMalformed        = "TOKEN_MALFORMED"
	TextCodeTokenExpired          = "TOKEN_EXPIRED"
	TextCodeTokenUnsupported      = "TOKEN_UNSUPPORTED"
	TextCodeTokenBadSignature     = "TOKEN_INVALID_SIGNATURE"
	TextCodeUnauthenticated       = "UNAUTHENTICATED"
	TextCodeForbidden             = "FORBIDDEN"
	TextCodeIdentityNotFound      = "IDENTITY_NOT_FOUND"
	TextCodeDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"
	TextCodeEmptyPassword         = "EMPTY_PASSWORD"
	TextCodeWeakSigningKey        = "WEAK_SIGNING_KEY"
)

// ErrInvalidCredentials is returned for unknown usernames and wrong
// passwords alike; callers must not be able to tell the two apart.
var ErrInvalidCredentials = errors.New("Invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateUsername is returned when registering an already taken username.
var ErrDuplicateUsername = errors.New("Username already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateUsername).
	WithCode(errors.CodeBadRequest)

// ErrDuplicateEmail is returned when registering an already used email.
var ErrDuplicateEmail = errors.New("Email already in use", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeBadRequest)

// ErrTokenMalformed is returned for structurally invalid tokens.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a well-formed, correctly signed token is
// past its expiration.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenUnsupported is returned when a token uses a signing method other
// than the pinned HMAC family.
var ErrTokenUnsupported = errors.New("token signing method is not supported", errors.CategoryAuth).
	WithTextCode(TextCodeTokenUnsupported).
	WithCode(errors.CodeUnauthorized)

// ErrTokenInvalidSignature is returned when the signature does not verify
// against the configured key.
var ErrTokenInvalidSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenBadSignature).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthenticated is the request-boundary collapse of every token
// validation failure; the specific kind is only logged.
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when an authenticated principal fails a role
// predicate.
var ErrForbidden = errors.New("insufficient permissions", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrIdentityNotFound is the error we return for non found identities.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrDependencyUnavailable marks store or network failures. It is never
// mapped to an authentication failure.
var ErrDependencyUnavailable = errors.New("a backing service is unavailable", errors.CategoryInternal).
	WithTextCode(TextCodeDependencyUnavailable).
	WithCode(errors.CodeInternal)

// ErrNoEmptyPassword rejects blank passwords before hashing.
var ErrNoEmptyPassword = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrWeakSigningKey rejects signing secrets below 256 bits of key material.
var ErrWeakSigningKey = errors.New("signing secret must decode to at least 256 bits", errors.CategoryValidation).
	WithTextCode(TextCodeWeakSigningKey).
	WithCode(errors.CodeBadRequest)

// IsAuthFailure reports whether err belongs to the authentication category.
// Dependency failures and validation errors are not auth failures.
func IsAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.Category == errors.CategoryAuth
	}
	return false
}

// IsTokenExpiredError will check for expired tokens.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// cloneWithSource returns a copy of base carrying cause for diagnostics
// while keeping the public message and codes of base.
func cloneWithSource(base *errors.Error, cause error) error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	clone.Source = cause
	return clone
}
