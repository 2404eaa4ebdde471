package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// deviceCodeGrantType is the RFC 8628 grant type urn.
const deviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"

// slowDownStep is how much a slow_down reply widens the poll interval
// (RFC 8628 §3.5 mandates 5 seconds). Variable so tests can shrink it.
var slowDownStep = 5 * time.Second

// deviceCode runs the device authorization grant: request a device/user
// code pair, point the operator at the verification URL, then poll the
// token endpoint until the provider reports a decision.
func (e *Engine) deviceCode(ctx context.Context) (*TokenResponse, error) {
	params := e.baseParams()
	params.Set("scope", e.reg.Scope)

	body, status, err := e.postForm(ctx, e.reg.DeviceCodeEndpoint, params)
	if err != nil {
		return nil, err
	}
	grant, err := decodeDeviceAuthorization(body, status)
	if err != nil {
		return nil, err
	}

	e.showDeviceInstructions(grant)

	return e.pollForToken(ctx, grant)
}

func decodeDeviceAuthorization(body []byte, status int) (*DeviceAuthorization, error) {
	var errShape OAuthError
	if err := json.Unmarshal(body, &errShape); err == nil && errShape.Code != "" {
		errShape.StatusCode = status
		return nil, &errShape
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("device-code endpoint returned %d: %s", status, string(body))
	}
	var grant DeviceAuthorization
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, fmt.Errorf("failed to parse device authorization response: %w", err)
	}
	if grant.DeviceCode == "" {
		return nil, fmt.Errorf("device authorization response carried no device_code")
	}
	return &grant, nil
}

// showDeviceInstructions prints the provider's verification instructions
// and puts the user code on the clipboard when a clipboard is available.
func (e *Engine) showDeviceInstructions(grant *DeviceAuthorization) {
	if grant.Message != "" {
		fmt.Println(grant.Message)
	} else if grant.VerificationURIComplete != "" {
		fmt.Printf("Visit %s to authorize this application.\n", grant.VerificationURIComplete)
	} else {
		fmt.Printf("Visit %s and enter the code %s to authorize this application.\n",
			grant.VerificationURI, grant.UserCode)
	}

	if e.opts.CopyToClipboard != nil && grant.UserCode != "" {
		if err := e.opts.CopyToClipboard(grant.UserCode); err != nil {
			log.Debugf("could not copy user code to clipboard: %v", err)
		} else {
			fmt.Println("(the code has been copied to your clipboard)")
		}
	}
}

// pollForToken polls the token endpoint on the provider-declared interval.
// authorization_pending keeps the loop going; slow_down widens the interval
// by five seconds (RFC 8628); a declined or expired grant ends the whole
// operation with a specific reason; any other error is surfaced verbatim.
func (e *Engine) pollForToken(ctx context.Context, grant *DeviceAuthorization) (*TokenResponse, error) {
	params := e.baseParams()
	params.Set("grant_type", deviceCodeGrantType)
	params.Set("device_code", grant.DeviceCode)
	params.Set("client_secret", e.rec.ClientSecret)

	interval := time.Duration(grant.Interval) * time.Second

	fmt.Print("Polling")
	defer fmt.Println()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
		fmt.Print(".")

		body, status, err := e.postForm(ctx, e.reg.TokenEndpoint, params)
		if err != nil {
			return nil, err
		}
		tok, err := decodeToken(body, status)
		if err == nil {
			return tok, nil
		}

		oauthErr, ok := AsOAuthError(err)
		if !ok {
			return nil, err
		}
		switch oauthErr.Code {
		case ErrCodeAuthorizationPending:
			continue
		case ErrCodeSlowDown:
			interval += slowDownStep
			log.Debugf("provider asked to slow down, polling every %s now", interval)
		case ErrCodeAuthorizationDeclined, ErrCodeAccessDenied:
			return nil, fmt.Errorf("the user declined the authorization request")
		case ErrCodeExpiredToken:
			return nil, fmt.Errorf("too much time has elapsed, the device grant expired")
		default:
			return nil, oauthErr
		}
	}
}
