package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSessionKeys(t *testing.T) {
	auth1, enc1 := DeriveSessionKeys("super-secret")
	auth2, enc2 := DeriveSessionKeys("super-secret")

	assert.Len(t, auth1, 32)
	assert.Len(t, enc1, 32)

	// Cookies signed before a restart must still validate after it.
	assert.True(t, bytes.Equal(auth1, auth2), "auth key should be deterministic")
	assert.True(t, bytes.Equal(enc1, enc2), "encryption key should be deterministic")

	assert.False(t, bytes.Equal(auth1, enc1), "auth and encryption keys must differ")
}

func TestDeriveSessionKeysDifferentSecrets(t *testing.T) {
	auth1, _ := DeriveSessionKeys("secret-a")
	auth2, _ := DeriveSessionKeys("secret-b")

	assert.False(t, bytes.Equal(auth1, auth2), "different secrets should derive different keys")
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	other, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "two tokens should not collide")
}
