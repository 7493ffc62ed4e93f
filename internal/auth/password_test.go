package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_Format(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("Hash should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash should have 6 parts, got: %d", len(parts))
	}
	if parts[2] != "v=19" {
		t.Errorf("Expected v=19, got: %s", parts[2])
	}
	if parts[3] != "m=65536,t=3,p=4" {
		t.Errorf("Expected m=65536,t=3,p=4, got: %s", parts[3])
	}
}

func TestHashPassword_Uniqueness(t *testing.T) {
	t.Parallel()

	password := "the_same_password_12345"

	hash1, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}

	match1, _ := VerifyPassword(password, hash1)
	match2, _ := VerifyPassword(password, hash2)
	if !match1 || !match2 {
		t.Error("Both hashes should verify correctly")
	}
}

func TestVerifyPassword_Argon2(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	match, err := VerifyPassword("s3cret", hash)
	if err != nil || !match {
		t.Errorf("Correct password should match, got match=%v err=%v", match, err)
	}

	match, err = VerifyPassword("S3cret", hash)
	if err != nil {
		t.Fatalf("VerifyPassword should not return error for wrong password: %v", err)
	}
	if match {
		t.Error("Wrong password should not match")
	}
}

func TestVerifyPassword_Bcrypt(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$2a$04$") {
		t.Errorf("unexpected bcrypt hash prefix: %s", hash)
	}

	match, err := h.Verify("s3cret", hash)
	if err != nil || !match {
		t.Errorf("Correct password should match, got match=%v err=%v", match, err)
	}

	match, err = h.Verify("nope", hash)
	if err != nil || match {
		t.Errorf("Wrong password should not match, got match=%v err=%v", match, err)
	}
}

func TestVerifyPassword_CrossAlgorithm(t *testing.T) {
	t.Parallel()

	bcryptHash, err := BcryptHasher{Cost: bcrypt.MinCost}.Hash("pw")
	if err != nil {
		t.Fatalf("bcrypt hash: %v", err)
	}

	// Switching the configured hasher must not lock out existing users.
	match, err := Argon2Hasher{}.Verify("pw", bcryptHash)
	if err != nil || !match {
		t.Errorf("argon2 hasher should verify bcrypt hash, got match=%v err=%v", match, err)
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong format", "not-a-hash", ErrInvalidHash},
		{"wrong algorithm", "$scrypt$v=19$m=65536,t=3,p=4$salt$hash", ErrInvalidHash},
		{"missing parts", "$argon2id$v=19$m=65536", ErrInvalidHash},
		{"truncated bcrypt", "$2a$10$short", ErrInvalidHash},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := VerifyPassword("password", tt.hash)
			if err != tt.wantErr {
				t.Errorf("VerifyPassword with %q error = %v, want %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestVerifyPassword_WrongVersion(t *testing.T) {
	t.Parallel()

	invalidVersionHash := "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJl"

	match, err := VerifyPassword("password", invalidVersionHash)
	if err != ErrIncompatibleVersion {
		t.Errorf("Expected ErrIncompatibleVersion, got: %v", err)
	}
	if match {
		t.Error("Should not match with incompatible version")
	}
}

func TestNewHasher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		algorithm string
		cost      int
		want      Hasher
		wantErr   error
	}{
		{"default", "", 0, Argon2Hasher{}, nil},
		{"argon2id", AlgorithmArgon2id, 0, Argon2Hasher{}, nil},
		{"bcrypt", AlgorithmBcrypt, 12, BcryptHasher{Cost: 12}, nil},
		{"bcrypt cost too low", AlgorithmBcrypt, 1, BcryptHasher{Cost: bcrypt.DefaultCost}, nil},
		{"bcrypt cost too high", AlgorithmBcrypt, 99, BcryptHasher{Cost: bcrypt.DefaultCost}, nil},
		{"unknown", "md5", 0, nil, ErrUnknownAlgorithm},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewHasher(tt.algorithm, tt.cost)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewHasher() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NewHasher() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
