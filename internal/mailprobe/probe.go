// Package mailprobe verifies that the current access token actually
// authenticates against the provider's IMAP, POP and SMTP endpoints. Each
// probe runs independently so one failing protocol does not hide the
// results of the others.
package mailprobe

import (
	gosasl "github.com/emersion/go-sasl"
	log "github.com/sirupsen/logrus"

	"github.com/mailtoken/mailtoken/internal/provider"
	"github.com/mailtoken/mailtoken/internal/sasl"
)

// Probe authenticates against the registration's mail endpoints with a
// bearer token.
type Probe struct {
	reg         *provider.Registration
	email       string
	accessToken string
}

// New creates a probe for the given registration and credentials.
func New(reg *provider.Registration, email, accessToken string) *Probe {
	return &Probe{reg: reg, email: email, accessToken: accessToken}
}

// Result is the outcome of one protocol check.
type Result struct {
	Protocol string
	Err      error
}

// Run checks IMAP, POP and SMTP in order and returns one result per
// protocol, never aborting early.
func (p *Probe) Run() []Result {
	results := []Result{
		{Protocol: sasl.ProtocolIMAP, Err: p.checkIMAP()},
		{Protocol: sasl.ProtocolPOP, Err: p.checkPOP()},
		{Protocol: sasl.ProtocolSMTP, Err: p.checkSMTP()},
	}
	for _, r := range results {
		if r.Err != nil {
			log.Warnf("%s authentication FAILED: %v", r.Protocol, r.Err)
		} else {
			log.Infof("%s authentication succeeded", r.Protocol)
		}
	}
	return results
}

// initialResponse builds the unencoded SASL initial response for the given
// protocol's endpoint.
func (p *Probe) initialResponse(protocol string) (string, error) {
	host, port, err := sasl.Endpoint(p.reg, protocol)
	if err != nil {
		return "", err
	}
	return sasl.BuildString(p.reg.SASLMethod, p.email, host, port, p.accessToken)
}

// bearerClient is a single-round-trip go-sasl client carrying a prebuilt
// initial response. Both OAUTHBEARER and XOAUTH2 complete in one step; any
// server challenge means the authentication was rejected.
type bearerClient struct {
	mech    string
	initial string
}

func (c *bearerClient) Start() (mech string, ir []byte, err error) {
	return c.mech, []byte(c.initial), nil
}

func (c *bearerClient) Next(challenge []byte) ([]byte, error) {
	return nil, gosasl.ErrUnexpectedServerChallenge
}
