// Package security provides secure random generation utilities
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateOpaqueID returns an identifier suitable for visitor and session
// identity: a ULID when entropy is available, otherwise a unix-nano timestamp
// with a hex random suffix. It never fails.
func GenerateOpaqueID() (id string) {
	defer func() {
		if r := recover(); r != nil {
			id = fallbackID()
		}
	}()
	return ulid.Make().String()
}

// fallbackID builds a timestamp-plus-random identifier without ULID entropy.
func fallbackID() string {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(suffix))
}

// GenerateSecureToken generates a cryptographically secure random token suitable for URLs.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
