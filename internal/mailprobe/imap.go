package mailprobe

import (
	"fmt"

	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/mailtoken/mailtoken/internal/sasl"
)

// checkIMAP connects over TLS and authenticates. Microsoft can report a
// successful AUTHENTICATE for a mismatched account/token pair, with only
// subsequent commands failing, so a LIST follows the authentication before
// success is reported.
func (p *Probe) checkIMAP() error {
	host, port, err := sasl.Endpoint(p.reg, sasl.ProtocolIMAP)
	if err != nil {
		return err
	}
	initial, err := p.initialResponse(sasl.ProtocolIMAP)
	if err != nil {
		return err
	}

	client, err := imapclient.DialTLS(fmt.Sprintf("%s:%d", host, port), nil)
	if err != nil {
		return fmt.Errorf("connect to %s:%d: %w", host, port, err)
	}
	defer client.Close()

	if err = client.Authenticate(&bearerClient{mech: p.reg.SASLMethod, initial: initial}); err != nil {
		return fmt.Errorf("authenticate (does your account allow IMAP?): %w", err)
	}
	if _, err = client.List("", "INBOX", nil).Collect(); err != nil {
		return fmt.Errorf("post-auth LIST failed: %w", err)
	}
	return client.Logout().Wait()
}
