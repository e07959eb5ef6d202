// Package token generates the opaque identifiers handed out to clinics and
// patients. Values are URL-safe base64 without padding.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// PublicTokenBytes gives public tokens 128 bits of entropy (22 characters).
	PublicTokenBytes = 16
	// ClinicCodeBytes gives clinic codes 64 bits of entropy (11 characters).
	ClinicCodeBytes = 8
)

// Generator produces a fresh opaque token.
type Generator func() (string, error)

// New returns n random bytes from crypto/rand, URL-safe encoded.
func New(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func PublicToken() (string, error) {
	return New(PublicTokenBytes)
}

func ClinicCode() (string, error) {
	return New(ClinicCodeBytes)
}
