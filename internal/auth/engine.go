// Package auth drives the OAuth2 grant flows that turn operator consent
// into tokens: authorization code (with PKCE, pasted or received on a local
// callback server), device code with polling, and refresh-token exchange.
// Every successful exchange updates the credential record and saves it
// before the token is handed to the caller.
package auth

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mailtoken/mailtoken/internal/provider"
	"github.com/mailtoken/mailtoken/internal/store"
)

// Authorization flow names, as persisted in the credential record.
const (
	FlowAuthCode          = "authcode"
	FlowLocalhostAuthCode = "localhostauthcode"
	FlowDeviceCode        = "devicecode"
)

// FlowNames returns the recognized flow names for prompts and help text.
func FlowNames() []string {
	return []string{FlowAuthCode, FlowLocalhostAuthCode, FlowDeviceCode}
}

// PromptFunc asks the operator a question and returns the entered line.
type PromptFunc func(prompt string) (string, error)

// Options are the injectable I/O collaborators of the engine, so the flow
// logic itself never touches a terminal directly.
type Options struct {
	// NoBrowser suppresses the automatic browser launch for the
	// authorization URL.
	NoBrowser bool
	// Prompt collects operator input. Defaults to reading a line from
	// standard input.
	Prompt PromptFunc
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
	// OpenURL opens the authorization URL in a browser. Best effort; a
	// failure only means the operator has to copy the printed URL.
	OpenURL func(url string) error
	// CopyToClipboard places the device-flow user code on the system
	// clipboard. Best effort.
	CopyToClipboard func(text string) error
}

// Engine runs authorization and refresh flows for one credential record
// against one provider registration.
type Engine struct {
	reg        *provider.Registration
	rec        *store.Record
	st         *store.TokenStore
	httpClient *http.Client
	opts       Options
}

// NewEngine wires an engine to its record, registration and store.
func NewEngine(reg *provider.Registration, rec *store.Record, st *store.TokenStore, opts Options) *Engine {
	e := &Engine{reg: reg, rec: rec, st: st, opts: opts, httpClient: opts.HTTPClient}
	if e.httpClient == nil {
		e.httpClient = &http.Client{}
	}
	if e.opts.Prompt == nil {
		e.opts.Prompt = stdinPrompt
	}
	return e
}

// Authorize runs the named grant flow to completion: obtain a code or
// device grant, exchange it for tokens, and persist the updated record.
// An unknown flow name is a configuration error.
func (e *Engine) Authorize(ctx context.Context, flow string) error {
	var (
		tok *TokenResponse
		err error
	)
	switch flow {
	case FlowAuthCode, FlowLocalhostAuthCode:
		tok, err = e.authorizationCode(ctx, flow == FlowLocalhostAuthCode)
	case FlowDeviceCode:
		tok, err = e.deviceCode(ctx)
	default:
		return fmt.Errorf("unknown OAuth2 flow %q, delete the token file and start over", flow)
	}
	if err != nil {
		return err
	}
	return e.saveTokens(tok)
}

// baseParams assembles the parameters common to every provider request:
// the client identity and, when the registration carries one, the tenant.
func (e *Engine) baseParams() url.Values {
	params := url.Values{}
	params.Set("client_id", e.rec.ClientID)
	if e.reg.HasTenant() {
		params.Set("tenant", e.reg.Tenant)
	}
	return params
}

// saveTokens installs a freshly issued token pair in the record and writes
// the record back before returning, so a crash after issuance can never
// leave the store stale.
func (e *Engine) saveTokens(tok *TokenResponse) error {
	e.rec.ApplyTokens(tok.AccessToken, tok.ExpiresIn, tok.RefreshToken, time.Now())
	if err := e.st.Save(e.rec); err != nil {
		return err
	}
	log.Infof("obtained new access token, expires %s", e.rec.AccessTokenExpiration)
	return nil
}

func stdinPrompt(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
