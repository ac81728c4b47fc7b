// Package auth implements sign-in: password hashing, session tokens, the
// session middleware and GitHub OAuth.
//
// Passwords are hashed with PBKDF2-HMAC-SHA256 and a random per-user salt.
// Hash and salt are stored as separate hex columns on the users table:
//
//	hashed_pw = hex(PBKDF2(password, salt, iterations, 32, sha256))
//	salt      = hex(16 random bytes)
//
// The iteration count is not stored; changing it invalidates existing hashes.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// MinIterations is the lowest PBKDF2 iteration count accepted in production.
const MinIterations = 1 << 18

const (
	saltLen = 16
	keyLen  = 32
)

// ErrInvalidPassword is returned by Verify when the password does not match.
var ErrInvalidPassword = errors.New("auth: invalid password")

// PasswordService derives and checks PBKDF2 password hashes.
type PasswordService struct {
	iterations int
}

// NewPasswordService returns a PasswordService using iterations rounds,
// raised to MinIterations if lower.
func NewPasswordService(iterations int) *PasswordService {
	if iterations < MinIterations {
		iterations = MinIterations
	}
	return &PasswordService{iterations: iterations}
}

// NewPasswordServiceForTest skips the MinIterations floor so tests in other
// packages stay fast. Do NOT use in production.
func NewPasswordServiceForTest(iterations int) *PasswordService {
	return &PasswordService{iterations: iterations}
}

// Iterations reports the configured round count.
func (p *PasswordService) Iterations() int {
	return p.iterations
}

// Hash generates a fresh salt and returns the hex-encoded hash and salt.
func (p *PasswordService) Hash(plaintext string) (hash, salt string, err error) {
	if plaintext == "" {
		return "", "", errors.New("auth: password must not be empty")
	}

	raw := make([]byte, saltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("auth: generating salt: %w", err)
	}

	salt = hex.EncodeToString(raw)
	return hex.EncodeToString(p.derive(plaintext, raw)), salt, nil
}

// Verify recomputes the hash of plaintext with the stored salt and compares
// it to the stored hash. Returns nil on a match, ErrInvalidPassword otherwise.
func (p *PasswordService) Verify(hash, salt, plaintext string) error {
	rawSalt, err := hex.DecodeString(salt)
	if err != nil {
		return fmt.Errorf("auth: decoding salt: %w", err)
	}
	want, err := hex.DecodeString(hash)
	if err != nil {
		return fmt.Errorf("auth: decoding hash: %w", err)
	}

	got := p.derive(plaintext, rawSalt)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

func (p *PasswordService) derive(plaintext string, salt []byte) []byte {
	return pbkdf2.Key([]byte(plaintext), salt, p.iterations, keyLen, sha256.New)
}
