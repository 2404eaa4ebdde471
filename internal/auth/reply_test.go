package auth

import (
	"errors"
	"testing"
)

func TestParseAuthReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		want     string
		wantErr  bool
		oauthErr string
	}{
		{
			name:  "full redirect url",
			input: "https://login.microsoftonline.com/common/oauth2/nativeclient?code=ABC123&state=xyz",
			want:  "ABC123",
		},
		{
			name:  "localhost redirect url",
			input: "http://localhost:8923/?code=4%2F0Adeu5BW&scope=https%3A%2F%2Fmail.google.com%2F",
			want:  "4/0Adeu5BW",
		},
		{
			name:  "bare code",
			input: "  M.C507_BAY.2.U.abc-def  ",
			want:  "M.C507_BAY.2.U.abc-def",
		},
		{
			name:  "query string without url",
			input: "?code=XYZ&session_state=1",
			want:  "XYZ",
		},
		{
			name:  "key value pairs",
			input: "code=XYZ&state=2",
			want:  "XYZ",
		},
		{
			name:  "single code parameter",
			input: "code=XYZ",
			want:  "XYZ",
		},
		{
			name:  "bare code containing equals",
			input: "4/0AX4XfWh=extra==",
			want:  "4/0AX4XfWh=extra==",
		},
		{
			name:  "empty input",
			input: "   ",
			want:  "",
		},
		{
			name:     "error redirect",
			input:    "http://localhost/?error=access_denied&error_description=user+said+no",
			wantErr:  true,
			oauthErr: "access_denied",
		},
		{
			name:  "url without code",
			input: "https://example.com/callback?state=xyz",
			want:  "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAuthReply(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAuthReply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.oauthErr != "" {
				var oe *OAuthError
				if !errors.As(err, &oe) || oe.Code != tt.oauthErr {
					t.Fatalf("ParseAuthReply() error = %v, want OAuth error %q", err, tt.oauthErr)
				}
			}
			if got != tt.want {
				t.Errorf("ParseAuthReply() = %q, want %q", got, tt.want)
			}
		})
	}
}
