package mailprobe

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/mailtoken/mailtoken/internal/sasl"
)

// checkSMTP connects on the submission port and upgrades with STARTTLS.
// SMTPS on 465 would be simpler but Microsoft does not answer there.
func (p *Probe) checkSMTP() error {
	host, port, err := sasl.Endpoint(p.reg, sasl.ProtocolSMTP)
	if err != nil {
		return err
	}
	initial, err := p.initialResponse(sasl.ProtocolSMTP)
	if err != nil {
		return err
	}

	client, err := smtp.Dial(fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("connect to %s:%d: %w", host, port, err)
	}
	defer client.Close()

	if err = client.Hello("localhost"); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err = client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return fmt.Errorf("STARTTLS failed: %w", err)
	}
	if err = client.Auth(&bearerSMTPAuth{mech: p.reg.SASLMethod, initial: initial}); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	return client.Quit()
}

// bearerSMTPAuth adapts the prebuilt SASL initial response to net/smtp's
// Auth interface. net/smtp base64-encodes the response itself.
type bearerSMTPAuth struct {
	mech    string
	initial string
}

func (a *bearerSMTPAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, fmt.Errorf("refusing to send a bearer token without TLS")
	}
	return a.mech, []byte(a.initial), nil
}

func (a *bearerSMTPAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		// A challenge after the initial response carries the failure
		// detail; an empty reply makes the server report the final error.
		return []byte{}, nil
	}
	return nil, nil
}
