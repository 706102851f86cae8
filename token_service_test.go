package users_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newTokenService(t *testing.T, ttl time.Duration) users.TokenService {
	t.Helper()

	service, err := users.NewTokenService(testSigningKey, ttl, "test-issuer", jwt.ClaimStrings{"test-audience"}, nil)
	require.NoError(t, err)
	return service
}

func testPrincipal(t *testing.T) *users.Principal {
	t.Helper()

	user := &users.User{
		Username: "ada",
		Email:    "ada@example.com",
	}
	user.ID = newUUID(t)
	return users.NewPrincipal(user, []string{users.RoleUser, users.RoleAdmin})
}

func TestNewTokenService(t *testing.T) {
	t.Run("rejects short signing keys", func(t *testing.T) {
		_, err := users.NewTokenService([]byte("too-short"), 0, "", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, users.ErrWeakSigningKey)
	})

	t.Run("accepts a 32 byte key", func(t *testing.T) {
		service, err := users.NewTokenService(testSigningKey, 0, "", nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, service)
	})
}

func TestDecodeSigningKey(t *testing.T) {
	t.Run("decodes base64 secrets", func(t *testing.T) {
		raw := make([]byte, 48)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		key, err := users.DecodeSigningKey(base64.StdEncoding.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, key)
	})

	t.Run("falls back to raw secrets", func(t *testing.T) {
		key, err := users.DecodeSigningKey(string(testSigningKey))
		require.NoError(t, err)
		assert.Equal(t, testSigningKey, key)
	})

	t.Run("rejects short secrets", func(t *testing.T) {
		_, err := users.DecodeSigningKey("short")
		assert.ErrorIs(t, err, users.ErrWeakSigningKey)
	})

	t.Run("rejects empty secrets", func(t *testing.T) {
		_, err := users.DecodeSigningKey("")
		assert.ErrorIs(t, err, users.ErrWeakSigningKey)
	})
}

func TestTokenServiceRoundTrip(t *testing.T) {
	service := newTokenService(t, time.Hour)
	principal := testPrincipal(t)

	tokenString, err := service.Issue(principal)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := service.Validate(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "ada", claims.Subject())
	assert.Equal(t, principal.ID(), claims.UserID())
	assert.ElementsMatch(t, []string{users.RoleUser, users.RoleAdmin}, claims.RoleNames())
	assert.True(t, claims.HasRole(users.RoleAdmin))
	assert.False(t, claims.HasRole(users.RoleModerator))
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires(), time.Minute)
}

func TestTokenServiceIssueRequiresUsername(t *testing.T) {
	service := newTokenService(t, time.Hour)

	_, err := service.Issue(nil)
	assert.Error(t, err)

	_, err = service.Issue(users.NewPrincipal(&users.User{}, nil))
	assert.Error(t, err)
}

func TestTokenServiceExpiredToken(t *testing.T) {
	service := newTokenService(t, time.Hour)

	now := time.Now().Add(-2 * time.Hour)
	claims := &users.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   "ada",
			Audience:  jwt.ClaimStrings{"test-audience"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	tokenString, err := service.SignClaims(claims)
	require.NoError(t, err)

	_, err = service.Validate(tokenString)
	require.Error(t, err)
	assert.True(t, users.IsTokenExpiredError(err))
	assert.True(t, users.IsAuthFailure(err))
}

func TestTokenServiceWrongKey(t *testing.T) {
	service := newTokenService(t, time.Hour)

	other, err := users.NewTokenService([]byte("ffffffffffffffffffffffffffffffff"), time.Hour, "test-issuer", jwt.ClaimStrings{"test-audience"}, nil)
	require.NoError(t, err)

	tokenString, err := other.Issue(testPrincipal(t))
	require.NoError(t, err)

	_, err = service.Validate(tokenString)
	require.Error(t, err)
	assert.True(t, users.IsAuthFailure(err))
	assert.False(t, users.IsTokenExpiredError(err))
}

func TestTokenServiceRejectsForeignAlgorithms(t *testing.T) {
	service := newTokenService(t, time.Hour)

	claims := jwt.MapClaims{
		"sub": "ada",
		"iss": "test-issuer",
		"aud": "test-audience",
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	t.Run("alg none", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		require.Error(t, err)
		assert.True(t, users.IsAuthFailure(err))
	})

	t.Run("alg RS256", func(t *testing.T) {
		privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		tokenString, err := token.SignedString(privateKey)
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		require.Error(t, err)
		assert.True(t, users.IsAuthFailure(err))
	})
}

func TestTokenServiceMalformedToken(t *testing.T) {
	service := newTokenService(t, time.Hour)

	_, err := service.Validate("not.a.token")
	require.Error(t, err)
	assert.True(t, users.IsMalformedError(err))
}
