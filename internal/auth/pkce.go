package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// PKCECodes holds the verifier/challenge pair for one authorization attempt.
// The pair is never persisted; it is discarded once the code exchange
// completes.
type PKCECodes struct {
	// CodeVerifier is the cryptographically random string that correlates
	// the authorization request to the token request.
	CodeVerifier string
	// CodeChallenge is the SHA-256 hash of the verifier, base64url-encoded
	// without padding (the S256 method of RFC 7636).
	CodeChallenge string
}

// GeneratePKCECodes generates a fresh PKCE verifier and challenge pair.
func GeneratePKCECodes() (*PKCECodes, error) {
	verifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	return &PKCECodes{
		CodeVerifier:  verifier,
		CodeChallenge: generateCodeChallenge(verifier),
	}, nil
}

// generateCodeVerifier creates a 96-byte random string encoded as 128
// URL-safe base64 characters, the maximum length RFC 7636 allows.
func generateCodeVerifier() (string, error) {
	bytes := make([]byte, 96)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(bytes), nil
}

// generateCodeChallenge hashes the verifier with SHA-256 and encodes it
// using URL-safe base64 without padding.
func generateCodeChallenge(codeVerifier string) string {
	hash := sha256.Sum256([]byte(codeVerifier))
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(hash[:])
}
