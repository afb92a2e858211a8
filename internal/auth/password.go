package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verifier compares a candidate secret with its stored representation.
type Verifier interface {
	Verify(candidate, stored string) bool
}

// Hasher turns a plaintext secret into its stored representation.
type Hasher interface {
	Hash(plain string) (string, error)
}

// PasswordScheme pairs the two halves of password handling.
type PasswordScheme interface {
	Hasher
	Verifier
}

// PlainScheme stores secrets as given and compares them in constant time.
type PlainScheme struct{}

// Hash returns the secret unchanged.
func (PlainScheme) Hash(plain string) (string, error) {
	return plain, nil
}

// Verify reports whether candidate equals stored.
func (PlainScheme) Verify(candidate, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1
}

// BcryptScheme stores bcrypt hashes.
type BcryptScheme struct {
	Cost int
}

// Hash returns the bcrypt hash of plain.
func (b BcryptScheme) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether candidate matches the stored bcrypt hash.
func (BcryptScheme) Verify(candidate, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}

// SchemeByName resolves the PASSWORD_HASHING setting.
func SchemeByName(name string) (PasswordScheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bcrypt":
		return BcryptScheme{}, nil
	case "plain":
		return PlainScheme{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", name)
	}
}
