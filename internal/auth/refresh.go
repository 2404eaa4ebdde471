package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoRefreshToken means the record has never completed an authorization,
// or the operator reset it. Not recoverable within one run.
var ErrNoRefreshToken = errors.New("no refresh token on record, run with -authorize")

// Refresh exchanges the stored refresh token for a new access token and
// persists the result. Called when the cached access token is absent or
// expired. A rejected refresh token means the operator has to re-authorize.
func (e *Engine) Refresh(ctx context.Context) error {
	if e.rec.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	params := e.baseParams()
	params.Set("client_secret", e.rec.ClientSecret)
	params.Set("refresh_token", e.rec.RefreshToken)
	params.Set("grant_type", "refresh_token")

	body, status, err := e.postForm(ctx, e.reg.TokenEndpoint, params)
	if err != nil {
		return err
	}
	tok, err := decodeToken(body, status)
	if err != nil {
		return fmt.Errorf("refresh failed (%w), perhaps the refresh token is no longer valid, try running once with -authorize", err)
	}
	return e.saveTokens(tok)
}
