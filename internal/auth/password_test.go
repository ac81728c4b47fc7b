package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"golang.org/x/crypto/pbkdf2"
)

// =========================================================================
// HELPER
// =========================================================================

// newTestPasswordService uses 1000 rounds so the suite runs in milliseconds.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(1000)
}

// =========================================================================
// Hash TESTS
// =========================================================================

func TestNewPasswordService_ClampsIterations(t *testing.T) {
	if got := NewPasswordService(10).Iterations(); got != MinIterations {
		t.Errorf("Iterations() = %d, want %d", got, MinIterations)
	}
	if got := NewPasswordService(MinIterations * 2).Iterations(); got != MinIterations*2 {
		t.Errorf("Iterations() = %d, want %d", got, MinIterations*2)
	}
}

func TestHash_ReturnsHexHashAndSalt(t *testing.T) {
	ps := newTestPasswordService()

	hash, salt, err := ps.Hash("my-secret-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if len(hash) != keyLen*2 {
		t.Errorf("len(hash) = %d, want %d hex chars", len(hash), keyLen*2)
	}
	if len(salt) != saltLen*2 {
		t.Errorf("len(salt) = %d, want %d hex chars", len(salt), saltLen*2)
	}
}

func TestHash_MatchesPBKDF2(t *testing.T) {
	ps := newTestPasswordService()

	hash, salt, err := ps.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	rawSalt, _ := hex.DecodeString(salt)
	want := hex.EncodeToString(pbkdf2.Key([]byte("correct horse"), rawSalt, 1000, 32, sha256.New))
	if hash != want {
		t.Errorf("Hash() = %s, want PBKDF2-SHA256 %s", hash, want)
	}
}

func TestHash_SamePasswordProducesDifferentSalts(t *testing.T) {
	ps := newTestPasswordService()

	hash1, salt1, _ := ps.Hash("same-password")
	hash2, salt2, _ := ps.Hash("same-password")

	if salt1 == salt2 {
		t.Error("Hash() reused a salt")
	}
	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestHash_RejectsEmptyPassword(t *testing.T) {
	if _, _, err := newTestPasswordService().Hash(""); err == nil {
		t.Fatal("Hash() should reject an empty password")
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, salt, err := ps.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"correct password", "hunter2", nil},
		{"wrong password", "hunter3", ErrInvalidPassword},
		{"empty password", "", ErrInvalidPassword},
		{"case matters", "Hunter2", ErrInvalidPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Verify(hash, salt, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_DifferentIterationCountFails(t *testing.T) {
	hash, salt, _ := NewPasswordServiceForTest(1000).Hash("hunter2")
	if err := NewPasswordServiceForTest(1001).Verify(hash, salt, "hunter2"); err == nil {
		t.Fatal("Verify() should fail when the round count differs")
	}
}

func TestVerify_CorruptSalt(t *testing.T) {
	ps := newTestPasswordService()
	hash, _, _ := ps.Hash("hunter2")
	if err := ps.Verify(hash, "not-hex", "hunter2"); err == nil || errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("Verify() error = %v, want a decoding error", err)
	}
}
