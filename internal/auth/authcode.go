package auth

import (
	"context"
	"fmt"
	"net/url"

	log "github.com/sirupsen/logrus"

	"github.com/mailtoken/mailtoken/internal/auth/callback"
)

// authorizationCode runs the authorization-code grant with PKCE. With
// localhost=false the operator pastes the code (or the whole redirect URL)
// at a prompt; with localhost=true a one-shot local HTTP server receives
// the redirect on an ephemeral port.
func (e *Engine) authorizationCode(ctx context.Context, localhost bool) (*TokenResponse, error) {
	pkce, err := GeneratePKCECodes()
	if err != nil {
		return nil, err
	}

	redirectURI := e.reg.RedirectURI
	if e.rec.RedirectURI != "" {
		redirectURI = e.rec.RedirectURI
	}

	var srv *callback.Server
	if localhost {
		port, errPort := callback.EphemeralPort()
		if errPort != nil {
			return nil, errPort
		}
		redirectURI = fmt.Sprintf("http://localhost:%d/", port)
		srv = callback.New(port)
		if err = srv.Start(); err != nil {
			return nil, err
		}
	}

	params := e.baseParams()
	params.Set("scope", e.reg.Scope)
	params.Set("login_hint", e.rec.Email)
	params.Set("response_type", "code")
	params.Set("redirect_uri", redirectURI)
	params.Set("code_challenge", pkce.CodeChallenge)
	params.Set("code_challenge_method", "S256")

	authURL := e.reg.AuthorizeEndpoint + "?" + params.Encode()
	fmt.Println(authURL)
	e.openBrowser(authURL)

	var code string
	if localhost {
		code, err = e.waitForRedirect(ctx, srv)
	} else {
		code, err = e.promptForCode()
	}
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, ErrNoAuthCode
	}

	return e.exchangeCode(ctx, code, redirectURI, pkce)
}

// exchangeCode trades the authorization code for tokens. The PKCE verifier
// and the client secret travel in this request; the challenge, response
// type and login hint from the authorization request do not.
func (e *Engine) exchangeCode(ctx context.Context, code, redirectURI string, pkce *PKCECodes) (*TokenResponse, error) {
	fmt.Println("Exchanging the authorization code for an access token")

	params := e.baseParams()
	params.Set("scope", e.reg.Scope)
	params.Set("redirect_uri", redirectURI)
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("client_secret", e.rec.ClientSecret)
	params.Set("code_verifier", pkce.CodeVerifier)

	body, status, err := e.postForm(ctx, e.reg.TokenEndpoint, params)
	if err != nil {
		return nil, err
	}
	return decodeToken(body, status)
}

func (e *Engine) promptForCode() (string, error) {
	reply, err := e.opts.Prompt("Visit the displayed URL to retrieve the authorization code. " +
		"Enter the code, or paste the full redirect URL from the browser address bar: ")
	if err != nil {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}
	return ParseAuthReply(reply)
}

func (e *Engine) waitForRedirect(ctx context.Context, srv *callback.Server) (string, error) {
	fmt.Println("Visit the displayed URL to authorize this application. Waiting for the redirect...")

	result, err := srv.Wait(ctx)
	if err != nil {
		return "", err
	}
	if result == nil {
		// Interrupted wait; reported as "no code" rather than a hard error.
		return "", nil
	}
	if result.Error != "" {
		return "", &OAuthError{Code: result.Error, Description: result.ErrorDescription}
	}
	return result.Code, nil
}

// openBrowser launches the authorization URL in the operator's browser.
// Failures only cost convenience since the URL is printed anyway.
func (e *Engine) openBrowser(authURL string) {
	if e.opts.NoBrowser || e.opts.OpenURL == nil {
		return
	}
	if _, err := url.Parse(authURL); err != nil {
		return
	}
	if err := e.opts.OpenURL(authURL); err != nil {
		log.Debugf("could not open browser: %v", err)
	}
}
