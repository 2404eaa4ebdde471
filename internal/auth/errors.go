package auth

import (
	"errors"
	"fmt"
)

// Well-known OAuth error codes returned while polling the token endpoint
// during the device flow (RFC 8628 §3.5).
const (
	ErrCodeAuthorizationPending  = "authorization_pending"
	ErrCodeAuthorizationDeclined = "authorization_declined"
	ErrCodeSlowDown              = "slow_down"
	ErrCodeExpiredToken          = "expired_token"
	ErrCodeAccessDenied          = "access_denied"
)

// OAuthError is an error-shaped response body from a provider endpoint.
type OAuthError struct {
	// Code is the OAuth error code from the "error" field.
	Code string `json:"error"`
	// Description is the optional human-readable "error_description".
	Description string `json:"error_description,omitempty"`
	// StatusCode is the HTTP status the body arrived with.
	StatusCode int `json:"-"`
}

// Error returns a string representation of the OAuth error.
func (e *OAuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Description)
	}
	return e.Code
}

// AsOAuthError unwraps err into an *OAuthError when it is one.
func AsOAuthError(err error) (*OAuthError, bool) {
	var oe *OAuthError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// ErrNoAuthCode is returned when an authorization-code flow finishes without
// producing a code: the operator pressed enter on an empty prompt, aborted
// the callback wait, or the provider redirected with an error.
var ErrNoAuthCode = errors.New("did not obtain an authorization code")
