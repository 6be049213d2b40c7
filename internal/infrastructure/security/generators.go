// Package security provides identifier generation and token handling.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// IDProvider generates session identifiers. Injected into services so tests
// can supply deterministic IDs.
type IDProvider interface {
	NewID() string
}

// ULIDProvider generates lexicographically sortable ULIDs
type ULIDProvider struct{}

// NewULIDProvider creates the default production ID provider
func NewULIDProvider() *ULIDProvider {
	return &ULIDProvider{}
}

// NewID generates a new ULID string
func (p *ULIDProvider) NewID() string {
	return GenerateULID()
}

// GenerateULID generates a ULID string without a provider
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
