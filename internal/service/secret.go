package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// newSecretToken returns 32 bytes of cryptographic randomness, hex encoded.
// Used as the opaque value for magic links and bearer tokens.
func newSecretToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
