package mailprobe

import (
	"testing"

	"github.com/mailtoken/mailtoken/internal/provider"
	"github.com/mailtoken/mailtoken/internal/sasl"
)

func TestInitialResponsePerProtocol(t *testing.T) {
	t.Parallel()

	reg, err := provider.Lookup("google", "")
	if err != nil {
		t.Fatal(err)
	}
	p := New(reg, "a@b.com", "tok")

	tests := []struct {
		protocol string
		want     string
	}{
		{
			protocol: sasl.ProtocolIMAP,
			want:     "n,a=a@b.com,\x01host=imap.gmail.com\x01port=993\x01auth=Bearer tok\x01\x01",
		},
		{
			protocol: sasl.ProtocolPOP,
			want:     "n,a=a@b.com,\x01host=pop.gmail.com\x01port=995\x01auth=Bearer tok\x01\x01",
		},
		{
			protocol: sasl.ProtocolSMTP,
			want:     "n,a=a@b.com,\x01host=smtp.gmail.com\x01port=587\x01auth=Bearer tok\x01\x01",
		},
	}
	for _, tt := range tests {
		got, err := p.initialResponse(tt.protocol)
		if err != nil {
			t.Fatalf("initialResponse(%s) error = %v", tt.protocol, err)
		}
		if got != tt.want {
			t.Errorf("initialResponse(%s) = %q, want %q", tt.protocol, got, tt.want)
		}
	}
}

func TestBearerClientSingleRoundTrip(t *testing.T) {
	t.Parallel()

	c := &bearerClient{mech: provider.MethodXOAuth2, initial: "user=a@b.com\x01auth=Bearer tok\x01\x01"}

	mech, ir, err := c.Start()
	if err != nil {
		t.Fatal(err)
	}
	if mech != provider.MethodXOAuth2 {
		t.Errorf("mech = %q", mech)
	}
	if string(ir) != c.initial {
		t.Errorf("initial response = %q", ir)
	}

	// Any challenge after the initial response means rejection.
	if _, err = c.Next([]byte(`{"status":"401"}`)); err == nil {
		t.Error("Next() accepted a server challenge")
	}
}

func TestRunReportsAllProtocols(t *testing.T) {
	t.Parallel()

	// Unroutable endpoints; every probe fails fast but all three report.
	reg := &provider.Registration{
		Name:       "test",
		IMAPHost:   "127.0.0.1",
		POPHost:    "127.0.0.1",
		SMTPHost:   "127.0.0.1",
		SASLMethod: provider.MethodOAuthBearer,
	}
	results := New(reg, "a@b.com", "tok").Run()
	if len(results) != 3 {
		t.Fatalf("Run() returned %d results, want 3", len(results))
	}
	want := []string{sasl.ProtocolIMAP, sasl.ProtocolPOP, sasl.ProtocolSMTP}
	for i, r := range results {
		if r.Protocol != want[i] {
			t.Errorf("results[%d].Protocol = %q, want %q", i, r.Protocol, want[i])
		}
		if r.Err == nil {
			t.Errorf("%s probe against a closed port succeeded", r.Protocol)
		}
	}
}
