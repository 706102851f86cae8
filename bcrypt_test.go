package users_test

import (
	"testing"

	"github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes and verifies", func(t *testing.T) {
		hash, err := users.HashPassword("s3cret-passw0rd")
		require.NoError(t, err)
		require.NotEmpty(t, hash)
		assert.NotEqual(t, "s3cret-passw0rd", hash)

		assert.NoError(t, users.ComparePasswordAndHash("s3cret-passw0rd", hash))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := users.HashPassword("")
		assert.ErrorIs(t, err, users.ErrNoEmptyPassword)
	})
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := users.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	err = users.ComparePasswordAndHash("wrong password", hash)
	require.Error(t, err)
	assert.True(t, users.IsAuthFailure(err))
}

func TestRandomPasswordHash(t *testing.T) {
	hash := users.RandomPasswordHash()
	require.NotEmpty(t, hash)

	// stable within a single process so every miss costs one comparison
	assert.Equal(t, hash, users.RandomPasswordHash())

	assert.Error(t, users.ComparePasswordAndHash("anything", hash))
}
