package store

import (
	"time"
)

// Record is the long-lived OAuth state persisted in the encrypted token
// file. Field names match the on-disk JSON keys; the file predating tenant
// support simply lacks that key.
type Record struct {
	// Registration names the provider registration this record was created
	// against.
	Registration string `json:"registration"`
	// AuthFlow is the authorization flow chosen at record creation
	// ("authcode", "localhostauthcode" or "devicecode").
	AuthFlow string `json:"authflow"`
	// Email is the account address, used as the login hint and as the SASL
	// authorization identity.
	Email string `json:"email"`
	// ClientID and ClientSecret identify the OAuth2 application.
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	// Tenant overrides the provider's default directory tenant. Optional.
	Tenant string `json:"tenant,omitempty"`
	// RedirectURI overrides the registration's default redirect target for
	// the authcode flow. Optional.
	RedirectURI string `json:"redirect_uri,omitempty"`

	// AccessToken is the current bearer token, opaque to this program.
	AccessToken string `json:"access_token"`
	// AccessTokenExpiration is the absolute RFC3339 expiration of
	// AccessToken. The two fields are always updated together.
	AccessTokenExpiration string `json:"access_token_expiration"`
	// RefreshToken is the long-lived token used to mint new access tokens.
	// Non-empty once authorization has succeeded at least once.
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether the record has never been initialized. A record
// loaded from an existing token file always carries a registration name.
func (r *Record) Empty() bool {
	return r == nil || r.Registration == ""
}

// AccessTokenValidAt reports whether the stored access token is usable at
// the given instant: an expiration must be recorded and the instant must be
// strictly before it.
func (r *Record) AccessTokenValidAt(now time.Time) bool {
	if r == nil || r.AccessTokenExpiration == "" {
		return false
	}
	exp, err := time.Parse(time.RFC3339, r.AccessTokenExpiration)
	if err != nil {
		return false
	}
	return now.Before(exp)
}

// AccessTokenValid reports whether the stored access token is usable now.
func (r *Record) AccessTokenValid() bool {
	return r.AccessTokenValidAt(time.Now())
}

// ApplyTokens installs a freshly issued access token. The expiration is
// recomputed as now + lifetime so the two fields never drift apart. A new
// refresh token replaces the stored one only when the response actually
// carried one; providers routinely omit it from refresh responses, in which
// case the previous refresh token remains valid.
func (r *Record) ApplyTokens(accessToken string, expiresIn int, refreshToken string, now time.Time) {
	r.AccessToken = accessToken
	r.AccessTokenExpiration = now.Add(time.Duration(expiresIn) * time.Second).Format(time.RFC3339)
	if refreshToken != "" {
		r.RefreshToken = refreshToken
	}
}
