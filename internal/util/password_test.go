package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hashed, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "$2a$"), "bcrypt hash expected, got %q", hashed)

	again, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again, "same password must produce different hashes")

	assert.True(t, h.Verify("secret123", hashed))
	assert.True(t, h.Verify("secret123", again))
	assert.False(t, h.Verify("secret124", hashed))
}

func TestHashAcceptsUTF8(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	pw := "pässwörd-密码-🔑"

	hashed, err := h.Hash(pw)
	require.NoError(t, err)
	assert.True(t, h.Verify(pw, hashed))
}

func TestHashRejectsBadInput(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, ErrPasswordEmpty)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// 72 bytes exactly is still fine
	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)

	// 25 three-byte runes = 75 bytes even though it is only 25 characters
	_, err = h.Hash(strings.Repeat("密", 25))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyNeverFails(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hashed, err := h.Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)

	assert.False(t, h.Verify(strings.Repeat("a", MaxPasswordBytes+1), hashed), "oversized input must not match")
	assert.False(t, h.Verify("secret123", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("secret123", ""))
	assert.False(t, h.Verify("", hashed))
}

func TestNewPasswordHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewPasswordHasher(12).cost)
}
