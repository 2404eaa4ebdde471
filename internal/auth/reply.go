package auth

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseAuthReply extracts the authorization code from whatever the operator
// pasted at the prompt: a full redirect URL, a bare query string, or the
// code itself. It returns an empty string for empty input and an error for
// a redirect that carries an error parameter instead of a code.
func ParseAuthReply(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", nil
	}

	candidate := trimmed
	switch {
	case strings.Contains(candidate, "://"):
		// Full redirect URL.
	case strings.HasPrefix(candidate, "?"):
		candidate = "http://localhost/" + candidate
	case looksLikeQuery(candidate):
		candidate = "http://localhost/?" + candidate
	default:
		// A bare code, entered directly.
		return trimmed, nil
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("could not parse pasted reply: %w", err)
	}
	query := parsed.Query()

	if errCode := query.Get("error"); errCode != "" {
		return "", &OAuthError{
			Code:        errCode,
			Description: query.Get("error_description"),
		}
	}
	return query.Get("code"), nil
}

// looksLikeQuery reports whether pasted text is a redirect query string
// rather than a bare authorization code that happens to contain '='.
// Multiple parameters or a recognized parameter name mean query string.
func looksLikeQuery(s string) bool {
	if strings.Contains(s, "&") {
		return true
	}
	for _, key := range []string{"code=", "error=", "state="} {
		if strings.HasPrefix(s, key) {
			return true
		}
	}
	return false
}
