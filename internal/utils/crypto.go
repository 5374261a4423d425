package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// SessionKeyConfig holds the parameters for deriving cookie keys.
type SessionKeyConfig struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
}

// DefaultSessionKeyConfig returns the default derivation parameters.
func DefaultSessionKeyConfig() *SessionKeyConfig {
	return &SessionKeyConfig{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 2,
		KeyLength:   32,
	}
}

// DeriveSessionKeys stretches the configured session secret into the
// authentication and encryption keys for the cookie store. The salt is
// derived from the secret itself so the keys are stable across restarts.
func DeriveSessionKeys(secret string) (authKey, encKey []byte) {
	config := DefaultSessionKeyConfig()

	salt := sha256.Sum256([]byte("tmm-session-salt:" + secret))
	derived := argon2.IDKey([]byte(secret), salt[:], config.Iterations, config.Memory, config.Parallelism, config.KeyLength*2)

	return derived[:config.KeyLength], derived[config.KeyLength:]
}

// GenerateSecureToken generates a cryptographically secure random token
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
