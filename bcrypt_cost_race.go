//go:build race

package users

import "golang.org/x/crypto/bcrypt"

// The race detector makes cost 14 painfully slow in tests.
func passwordHashCost() int {
	return bcrypt.DefaultCost
}
