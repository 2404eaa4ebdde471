package sasl

import (
	"encoding/base64"
	"testing"

	"github.com/mailtoken/mailtoken/internal/provider"
)

func TestBuildString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		user    string
		host    string
		port    int
		token   string
		want    string
		wantErr bool
	}{
		{
			name:   "oauthbearer for imap",
			method: provider.MethodOAuthBearer,
			user:   "a@b.com", host: "imap.gmail.com", port: 993, token: "T",
			want: "n,a=a@b.com,\x01host=imap.gmail.com\x01port=993\x01auth=Bearer T\x01\x01",
		},
		{
			name:   "xoauth2",
			method: provider.MethodXOAuth2,
			user:   "a@b.com", host: "outlook.office365.com", port: 993, token: "T",
			want: "user=a@b.com\x01auth=Bearer T\x01\x01",
		},
		{
			name:   "unknown method",
			method: "SCRAM-SHA-1",
			user:   "a@b.com", host: "h", port: 1, token: "T",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildString(tt.method, tt.user, tt.host, tt.port, tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BuildString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	google, err := provider.Lookup("google", "")
	if err != nil {
		t.Fatal(err)
	}
	microsoft, err := provider.Lookup("microsoft", "")
	if err != nil {
		t.Fatal(err)
	}

	googleIMAP := base64.StdEncoding.EncodeToString(
		[]byte("n,a=a@b.com,\x01host=imap.gmail.com\x01port=993\x01auth=Bearer T\x01\x01"))
	microsoftIMAP := base64.StdEncoding.EncodeToString(
		[]byte("user=a@b.com\x01auth=Bearer T\x01\x01"))

	tests := []struct {
		name     string
		reg      *provider.Registration
		protocol string
		mode     string
		want     string
		wantErr  bool
	}{
		{"plain ignores protocol", google, ProtocolIMAP, ModePlain, "T", false},
		{"google imap sasl", google, ProtocolIMAP, ModeSASL, googleIMAP, false},
		{"google imap prefixed", google, ProtocolIMAP, ModePrefixed, "OAUTHBEARER " + googleIMAP, false},
		{"microsoft imap sasl", microsoft, ProtocolIMAP, ModeSASL, microsoftIMAP, false},
		{"microsoft imap prefixed", microsoft, ProtocolIMAP, ModePrefixed, "XOAUTH2 " + microsoftIMAP, false},
		{"unknown protocol", google, "nntp", ModeSASL, "", true},
		{"unknown mode", google, ProtocolIMAP, "json", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Format(tt.reg, "a@b.com", "T", tt.protocol, tt.mode)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Format() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatIdempotent(t *testing.T) {
	t.Parallel()

	reg, err := provider.Lookup("google", "")
	if err != nil {
		t.Fatal(err)
	}
	first, err := Format(reg, "a@b.com", "T", ProtocolSMTP, ModeSASL)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Format(reg, "a@b.com", "T", ProtocolSMTP, ModeSASL)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Format() not idempotent: %q then %q", first, second)
	}
}

func TestEndpointPorts(t *testing.T) {
	t.Parallel()

	reg, err := provider.Lookup("google", "")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		protocol string
		wantHost string
		wantPort int
	}{
		{ProtocolIMAP, "imap.gmail.com", 993},
		{ProtocolPOP, "pop.gmail.com", 995},
		{ProtocolSMTP, "smtp.gmail.com", 587},
	}
	for _, tt := range tests {
		host, port, err := Endpoint(reg, tt.protocol)
		if err != nil {
			t.Fatalf("Endpoint(%s) error = %v", tt.protocol, err)
		}
		if host != tt.wantHost || port != tt.wantPort {
			t.Errorf("Endpoint(%s) = %s:%d, want %s:%d", tt.protocol, host, port, tt.wantHost, tt.wantPort)
		}
	}
}
