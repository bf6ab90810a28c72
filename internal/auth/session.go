package auth

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewSessionToken returns a fresh opaque bearer token.
//
// Tokens are random UUIDv4 strings (122 random bits) stored as rows in the
// sessions table. Nothing is encoded in them: revoking a session is deleting
// its row.
func NewSessionToken() string {
	return uuid.NewString()
}

// NewSecret returns 16 random bytes as 32 hex characters. Used for the
// ADMIN_TOKEN printed by articlectl and for the throwaway password of the
// lazily created admin account.
func NewSecret() string {
	b := make([]byte, 16)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
