package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestArgon2Hash(t *testing.T) {
	h := Argon2Hasher{Pepper: "pepper"}

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6)
			require.Contains(t, parts[3], "m=")
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.NoError(t, h.Verify(tt.password, hash))
		})
	}
}

func TestArgon2Hash_UniqueSalts(t *testing.T) {
	h := Argon2Hasher{}

	hash1, err := h.Hash("samepassword")
	require.NoError(t, err)
	hash2, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.NoError(t, h.Verify("samepassword", hash1))
	require.NoError(t, h.Verify("samepassword", hash2))
}

func TestArgon2Verify_WrongPassword(t *testing.T) {
	h := Argon2Hasher{Pepper: "pepper"}
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", "", strings.Repeat("x", 10000)} {
		require.ErrorIs(t, h.Verify(wrong, hash), ErrPasswordMismatch, wrong)
	}
}

func TestArgon2Verify_PepperMatters(t *testing.T) {
	hash, err := Argon2Hasher{Pepper: "one"}.Hash("password")
	require.NoError(t, err)

	require.ErrorIs(t, Argon2Hasher{Pepper: "two"}.Verify("password", hash), ErrPasswordMismatch)
}

func TestArgon2Verify_InvalidHashFormat(t *testing.T) {
	h := Argon2Hasher{}

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.Verify("test-password", tt.invalidHash), ErrInvalidHash)
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("password123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost, "cost below default is raised")

	require.NoError(t, h.Verify("password123", hash))
	require.ErrorIs(t, h.Verify("password124", hash), ErrPasswordMismatch)
	require.ErrorIs(t, h.Verify("password123", "not-a-bcrypt-hash"), ErrInvalidHash)
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("", 0, "p")
	require.NoError(t, err)
	require.IsType(t, Argon2Hasher{}, h)

	h, err = NewPasswordHasher("BCRYPT", 12, "")
	require.NoError(t, err)
	require.Equal(t, BcryptHasher{Cost: 12}, h)

	_, err = NewPasswordHasher("bcrypt", bcrypt.MaxCost+1, "")
	require.Error(t, err)

	_, err = NewPasswordHasher("md5", 0, "")
	require.Error(t, err)
}
