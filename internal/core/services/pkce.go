package services

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/oauth2"
)

// stateBytes is the entropy of the OAuth state parameter.
const stateBytes = 32

// generateCodeVerifier returns a PKCE verifier (RFC 7636, 43 characters).
func generateCodeVerifier() (string, error) {
	return oauth2.GenerateVerifier(), nil
}

// generateState creates a random state parameter for CSRF protection.
func generateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
