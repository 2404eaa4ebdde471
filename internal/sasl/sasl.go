// Package sasl renders a valid access token in the form a mail client
// feeds to its server: the bare token, a base64-encoded SASL initial
// response, or the same prefixed with the SASL mechanism name.
package sasl

import (
	"encoding/base64"
	"fmt"

	"github.com/mailtoken/mailtoken/internal/provider"
)

// Output modes.
const (
	ModePlain    = "plain"
	ModeSASL     = "sasl"
	ModePrefixed = "sasl-prefixed"
)

// Mail protocols a token can be formatted for, with their TLS ports.
const (
	ProtocolIMAP = "imap"
	ProtocolPOP  = "pop"
	ProtocolSMTP = "smtp"
)

// Endpoint resolves the host and port of the registration's endpoint for
// the named protocol.
func Endpoint(reg *provider.Registration, protocol string) (host string, port int, err error) {
	switch protocol {
	case ProtocolIMAP:
		return reg.IMAPHost, 993, nil
	case ProtocolPOP:
		return reg.POPHost, 995, nil
	case ProtocolSMTP:
		return reg.SMTPHost, 587, nil
	default:
		return "", 0, fmt.Errorf("unknown protocol %q", protocol)
	}
}

// BuildString assembles the unencoded SASL initial response for the given
// mechanism. The fields are delimited by ASCII SOH (0x01), doubled at the
// end, per the OAUTHBEARER and XOAUTH2 conventions.
func BuildString(method, user, host string, port int, bearerToken string) (string, error) {
	switch method {
	case provider.MethodOAuthBearer:
		return fmt.Sprintf("n,a=%s,\x01host=%s\x01port=%d\x01auth=Bearer %s\x01\x01",
			user, host, port, bearerToken), nil
	case provider.MethodXOAuth2:
		return fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", user, bearerToken), nil
	default:
		return "", fmt.Errorf("unknown SASL method %q", method)
	}
}

// Format renders the access token in the requested output mode for the
// registration's endpoint of the given protocol. An unknown mode, protocol
// or SASL method is a configuration error; with a well-formed registry only
// a corrupted record can get here.
func Format(reg *provider.Registration, user, accessToken, protocol, mode string) (string, error) {
	if mode == ModePlain {
		return accessToken, nil
	}
	if mode != ModeSASL && mode != ModePrefixed {
		return "", fmt.Errorf("unknown output mode %q", mode)
	}

	host, port, err := Endpoint(reg, protocol)
	if err != nil {
		return "", err
	}
	raw, err := BuildString(reg.SASLMethod, user, host, port, accessToken)
	if err != nil {
		return "", err
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(raw))
	if mode == ModePrefixed {
		return reg.SASLMethod + " " + encoded, nil
	}
	return encoded, nil
}
