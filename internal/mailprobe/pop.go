package mailprobe

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/textproto"
	"strings"

	"github.com/mailtoken/mailtoken/internal/sasl"
)

// checkPOP speaks just enough POP3 over TLS to run the SASL exchange.
// Microsoft requires the two-line form: AUTH with the mechanism first, the
// base64 initial response on the continuation line.
func (p *Probe) checkPOP() error {
	host, port, err := sasl.Endpoint(p.reg, sasl.ProtocolPOP)
	if err != nil {
		return err
	}
	initial, err := p.initialResponse(sasl.ProtocolPOP)
	if err != nil {
		return err
	}

	conn, err := tls.Dial("tcp", fmt.Sprintf("%s:%d", host, port), nil)
	if err != nil {
		return fmt.Errorf("connect to %s:%d: %w", host, port, err)
	}
	text := textproto.NewConn(conn)
	defer text.Close()

	if err = expectOK(text, ""); err != nil {
		return fmt.Errorf("server greeting: %w", err)
	}
	if err = text.PrintfLine("AUTH %s", p.reg.SASLMethod); err != nil {
		return err
	}
	if err = expectContinuation(text); err != nil {
		return fmt.Errorf("AUTH %s not accepted: %w", p.reg.SASLMethod, err)
	}
	if err = text.PrintfLine("%s", base64.StdEncoding.EncodeToString([]byte(initial))); err != nil {
		return err
	}
	if err = expectOK(text, "authenticate (does your account allow POP?)"); err != nil {
		return err
	}
	return text.PrintfLine("QUIT")
}

func expectOK(text *textproto.Conn, context string) error {
	line, err := text.ReadLine()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, "+OK") {
		if context != "" {
			return fmt.Errorf("%s: %s", context, line)
		}
		return fmt.Errorf("unexpected response: %s", line)
	}
	return nil
}

func expectContinuation(text *textproto.Conn) error {
	line, err := text.ReadLine()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, "+") {
		return fmt.Errorf("unexpected response: %s", line)
	}
	return nil
}
