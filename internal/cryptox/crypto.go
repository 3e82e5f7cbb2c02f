// Package cryptox wraps the one-way password hashing used for stored
// credentials.
package cryptox

import (
	"errors"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the work factor the service has always used.
const DefaultCost = 10

// ErrMismatch is returned by CheckPassword when the password does not match.
var ErrMismatch = errors.New("password mismatch")

// ErrTooLong is returned by HashPassword for passwords over bcrypt's 72 byte limit.
var ErrTooLong = bcrypt.ErrPasswordTooLong

// HashPassword returns a salted bcrypt hash of password. The password slice is
// wiped before returning, so callers must not reuse it.
//
// Costs outside bcrypt's accepted range fall back to DefaultCost.
func HashPassword(password []byte, cost int) ([]byte, error) {
	defer common.WipeByteArray(password)

	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return bcrypt.GenerateFromPassword(password, cost)
}

// CheckPassword compares a stored hash with a candidate password in constant
// time. It returns ErrMismatch on a wrong password and any other error when
// the stored hash is malformed.
func CheckPassword(hash, candidate []byte) error {
	defer common.WipeByteArray(candidate)

	err := bcrypt.CompareHashAndPassword(hash, candidate)
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
