package cmd

import (
	"fmt"
	"strings"

	"github.com/mailtoken/mailtoken/internal/auth"
	"github.com/mailtoken/mailtoken/internal/provider"
	"github.com/mailtoken/mailtoken/internal/store"
)

// createRecord builds the initial credential record on first run. Values
// supplied through flags or the settings file are taken as-is; anything
// still missing is prompted for.
func createRecord(opts *Options) (*store.Record, error) {
	prompt := opts.Prompt
	if prompt == nil {
		return nil, fmt.Errorf("cannot create a new record without interactive input")
	}

	rec := &store.Record{
		Registration: opts.Provider,
		AuthFlow:     opts.AuthFlow,
		Email:        opts.Email,
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Tenant:       opts.Tenant,
		RedirectURI:  opts.RedirectURI,
	}

	var err error
	if rec.Registration == "" {
		rec.Registration, err = promptChoice(prompt, "OAuth2 registration", provider.Names())
		if err != nil {
			return nil, err
		}
	}
	if _, err = provider.Lookup(rec.Registration, ""); err != nil {
		return nil, err
	}

	if rec.AuthFlow == "" {
		rec.AuthFlow, err = promptChoice(prompt, "Preferred OAuth2 flow", auth.FlowNames())
		if err != nil {
			return nil, err
		}
	}
	if !contains(auth.FlowNames(), rec.AuthFlow) {
		return nil, fmt.Errorf("unknown OAuth2 flow %q (choose from %s)",
			rec.AuthFlow, strings.Join(auth.FlowNames(), ", "))
	}

	if rec.Email == "" {
		if rec.Email, err = prompt("Account e-mail address: "); err != nil {
			return nil, err
		}
	}
	if rec.ClientID == "" {
		if rec.ClientID, err = prompt("Client ID: "); err != nil {
			return nil, err
		}
	}
	if rec.ClientSecret == "" {
		// Public clients have no secret; an empty reply is fine.
		if rec.ClientSecret, err = prompt("Client secret (empty for a public client): "); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func promptChoice(prompt auth.PromptFunc, label string, choices []string) (string, error) {
	reply, err := prompt(fmt.Sprintf("%s (%s): ", label, strings.Join(choices, ", ")))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
