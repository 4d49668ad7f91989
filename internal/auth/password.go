package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt digest of plain. Passing an already-hashed
// value returns it unchanged so seed scripts and migrations stay idempotent.
func HashPassword(plain string) (string, error) {
	if IsHashed(plain) {
		return plain, nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsHashed reports whether v is structurally a bcrypt digest. Stored
// credentials that fail this predicate are legacy plaintext and must never
// authenticate.
func IsHashed(v string) bool {
	if len(v) != 60 {
		return false
	}
	return strings.HasPrefix(v, "$2a$") || strings.HasPrefix(v, "$2b$") || strings.HasPrefix(v, "$2y$")
}

// CheckPassword safely compares a plaintext candidate against a bcrypt
// digest. Malformed digests compare false, never panic.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// NormalizeEmail lower-cases and trims an email before any comparison or
// storage.
func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
