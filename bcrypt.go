package users

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword generates a bcrypt hash from a plain text password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyPassword
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	return string(bytes), nil
}

// ComparePasswordAndHash checks a plain text password against a bcrypt hash.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return cloneWithSource(ErrInvalidCredentials, err)
	}
	return nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// RandomPasswordHash returns a bcrypt hash of a random value. We compare
// against it when the username is unknown so that lookups for missing and
// existing accounts take comparable time.
func RandomPasswordHash() string {
	dummyHashOnce.Do(func() {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			copy(buf, []byte("3f9c2a6d8e1b407f5c3a9d2e6b8f1047"))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), passwordHashCost())
		if err != nil {
			panic(err)
		}
		dummyHash = string(hash)
	})
	return dummyHash
}
