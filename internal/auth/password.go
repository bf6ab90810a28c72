// Package auth holds the credential primitives: password hashing, session
// tokens, bearer-token middleware and the role checks shared by every
// service.
//
// PASSWORDS:
// bcrypt salts every hash and embeds salt and cost in the output, so a single
// column is enough:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version
//
// Databases migrated from the previous deployment still hold plaintext
// passwords. Verify accepts those once and tells the caller to re-hash.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input limit. Longer input would be silently
// truncated, so Hash rejects it.
const MaxPasswordBytes = 72

// defaultCost is the bcrypt work factor (~250ms on a modern server).
const defaultCost = 12

// ErrInvalidPassword is returned by Verify when the password does not match.
var ErrInvalidPassword = errors.New("auth: invalid password")

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected in
// tests. Cost 4 is the bcrypt minimum and keeps tests fast.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom cost.
// Use bcrypt.MinCost from tests in other packages. Never in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks plaintext against a stored password.
//
// stored is normally a bcrypt hash. If it is not, it is treated as a legacy
// plaintext password and compared in constant time; on a match rehash is
// true and the caller should replace the stored value with Hash(plaintext).
//
// A mismatch returns ErrInvalidPassword.
func (p *PasswordService) Verify(stored, plaintext string) (rehash bool, err error) {
	if !IsHash(stored) {
		if subtle.ConstantTimeCompare([]byte(stored), []byte(plaintext)) == 1 {
			return true, nil
		}
		return false, ErrInvalidPassword
	}

	err = bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, ErrInvalidPassword
		}
		return false, fmt.Errorf("auth: comparing password hash: %w", err)
	}

	// Hashes produced with an older, cheaper cost are upgraded too.
	if cost, _ := bcrypt.Cost([]byte(stored)); cost < p.cost {
		return true, nil
	}
	return false, nil
}

// IsHash reports whether stored is a bcrypt hash rather than plaintext.
func IsHash(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}
