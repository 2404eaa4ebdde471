package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// TokenResponse is the successful shape returned by a provider's token
// endpoint for every grant type this tool uses.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`
	// RefreshToken may be absent, in which case any previously stored
	// refresh token remains valid.
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// DeviceAuthorization is the response of a device-code endpoint (RFC 8628).
type DeviceAuthorization struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete,omitempty"`
	// Message is the provider's ready-made instruction line for the
	// operator (Microsoft supplies one).
	Message   string `json:"message,omitempty"`
	ExpiresIn int    `json:"expires_in"`
	// Interval is the minimum number of seconds between token polls.
	Interval int `json:"interval"`
}

// postForm sends an application/x-www-form-urlencoded POST and returns the
// raw response body together with the HTTP status. The body is returned
// even for error statuses because providers put the OAuth error shape in
// the body of 4xx responses.
func (e *Engine) postForm(ctx context.Context, endpoint string, data url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debugf("%s responded %d: %s", endpoint, resp.StatusCode, string(body))
	return body, resp.StatusCode, nil
}

// decodeToken interprets a token-endpoint response body. An error-shaped
// body (an "error" field, regardless of HTTP status) comes back as
// *OAuthError so callers can classify device-poll results; a non-2xx status
// without a decodable error shape is surfaced with status and body.
func decodeToken(body []byte, status int) (*TokenResponse, error) {
	var errShape OAuthError
	if err := json.Unmarshal(body, &errShape); err == nil && errShape.Code != "" {
		errShape.StatusCode = status
		return nil, &errShape
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("token endpoint returned %d %s: %s",
			status, http.StatusText(status), strings.TrimSpace(string(body)))
	}
	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token response carried no access_token")
	}
	return &tok, nil
}
