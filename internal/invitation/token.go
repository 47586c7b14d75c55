package invitation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"

	"github.com/frahmantamala/travel-agency/internal"
)

const tokenBytes = 32

// NewToken returns 64 hex characters from the system CSPRNG.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NormalizeEmail trims and lowercases a bare address. Display names
// ("Ana <ana@x>") are rejected.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", internal.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", internal.ErrInvalidEmail
	}
	return email, nil
}
