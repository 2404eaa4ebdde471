// Package provider holds the static OAuth2 app and endpoint registrations
// for the supported mail providers. Exactly one registration is selected per
// run, based on the name persisted in the token file (or supplied on first
// run); the registrations themselves are immutable.
package provider

import (
	"fmt"
	"strings"
)

// SASL method identifiers announced by the provider's mail endpoints.
const (
	MethodOAuthBearer = "OAUTHBEARER"
	MethodXOAuth2     = "XOAUTH2"
)

// DefaultMicrosoftTenant is the tenant baked into the Microsoft registration.
// Records that predate tenant support resolve to it.
const DefaultMicrosoftTenant = "common"

// Registration describes one provider's OAuth2 endpoints and mail hosts.
type Registration struct {
	// Name is the registry key ("google", "microsoft").
	Name string
	// AuthorizeEndpoint receives the browser-based authorization request.
	AuthorizeEndpoint string
	// DeviceCodeEndpoint issues device/user code pairs for the device flow.
	DeviceCodeEndpoint string
	// TokenEndpoint exchanges codes and refresh tokens for access tokens.
	TokenEndpoint string
	// RedirectURI is the default redirect target for the authcode flow.
	RedirectURI string
	// Tenant is the directory tenant substituted into the endpoint URLs.
	// Empty for providers without tenant support.
	Tenant string

	IMAPHost string
	POPHost  string
	SMTPHost string

	// SASLMethod is the mechanism the provider's mail endpoints accept.
	SASLMethod string
	// Scope is the OAuth2 scope string requested during authorization.
	Scope string
}

// HasTenant reports whether this registration carries a tenant segment in
// its endpoint URLs.
func (r *Registration) HasTenant() bool {
	return r.Tenant != ""
}

var registrations = map[string]Registration{
	"google": {
		Name:               "google",
		AuthorizeEndpoint:  "https://accounts.google.com/o/oauth2/auth",
		DeviceCodeEndpoint: "https://oauth2.googleapis.com/device/code",
		TokenEndpoint:      "https://accounts.google.com/o/oauth2/token",
		RedirectURI:        "urn:ietf:wg:oauth:2.0:oob",
		IMAPHost:           "imap.gmail.com",
		POPHost:            "pop.gmail.com",
		SMTPHost:           "smtp.gmail.com",
		SASLMethod:         MethodOAuthBearer,
		Scope:              "https://mail.google.com/",
	},
	"microsoft": {
		Name:               "microsoft",
		AuthorizeEndpoint:  "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
		DeviceCodeEndpoint: "https://login.microsoftonline.com/common/oauth2/v2.0/devicecode",
		TokenEndpoint:      "https://login.microsoftonline.com/common/oauth2/v2.0/token",
		RedirectURI:        "https://login.microsoftonline.com/common/oauth2/nativeclient",
		Tenant:             DefaultMicrosoftTenant,
		IMAPHost:           "outlook.office365.com",
		POPHost:            "outlook.office365.com",
		SMTPHost:           "smtp.office365.com",
		SASLMethod:         MethodXOAuth2,
		Scope: "offline_access https://outlook.office.com/IMAP.AccessAsUser.All " +
			"https://outlook.office.com/POP.AccessAsUser.All " +
			"https://outlook.office.com/SMTP.Send",
	},
}

// Names returns the registered provider names in a stable order, for
// prompts and flag help text.
func Names() []string {
	return []string{"google", "microsoft"}
}

// Lookup resolves a provider name to its registration. The tenant argument
// overrides the registration's default tenant: every occurrence of the
// default tenant segment in the four endpoint/redirect URLs is replaced with
// the requested value. An empty tenant keeps the default.
//
// An unknown name is an error rather than a fallback: it means the token
// file was edited by hand or produced by an incompatible version, and the
// operator should delete it and start over.
func Lookup(name, tenant string) (*Registration, error) {
	reg, ok := registrations[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider registration %q, delete the token file and start over", name)
	}
	if tenant != "" && reg.HasTenant() && tenant != reg.Tenant {
		reg.AuthorizeEndpoint = substituteTenant(reg.AuthorizeEndpoint, reg.Tenant, tenant)
		reg.DeviceCodeEndpoint = substituteTenant(reg.DeviceCodeEndpoint, reg.Tenant, tenant)
		reg.TokenEndpoint = substituteTenant(reg.TokenEndpoint, reg.Tenant, tenant)
		reg.RedirectURI = substituteTenant(reg.RedirectURI, reg.Tenant, tenant)
		reg.Tenant = tenant
	}
	return &reg, nil
}

func substituteTenant(u, from, to string) string {
	return strings.Replace(u, "/"+from+"/", "/"+to+"/", 1)
}
