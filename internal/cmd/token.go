// Package cmd contains the operation drivers wired up by the CLI entry
// point: obtain or refresh the access token, format it, and optionally
// exercise it against the provider's mail endpoints.
package cmd

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	log "github.com/sirupsen/logrus"

	"github.com/mailtoken/mailtoken/internal/auth"
	"github.com/mailtoken/mailtoken/internal/browser"
	"github.com/mailtoken/mailtoken/internal/mailprobe"
	"github.com/mailtoken/mailtoken/internal/provider"
	"github.com/mailtoken/mailtoken/internal/sasl"
	"github.com/mailtoken/mailtoken/internal/store"
)

// Options collects everything the token operation needs. Flag parsing in
// main fills it; tests construct it directly.
type Options struct {
	// TokenFile is the path of the encrypted credential store.
	TokenFile string

	// Authorize forces a fresh authorization flow before anything else.
	Authorize bool
	// AuthFlow overrides the flow recorded in the store for this run.
	AuthFlow string
	// Test exercises IMAP/POP/SMTP with the obtained token.
	Test bool

	// Output is one of plain, sasl, sasl-prefixed; Protocol selects the
	// endpoint a SASL string is built for.
	Output   string
	Protocol string

	NoBrowser bool

	// First-run record defaults; prompted for when empty.
	Provider     string
	Email        string
	ClientID     string
	ClientSecret string
	Tenant       string
	RedirectURI  string

	// Pipe argv overrides; empty slices select the GPG defaults.
	EncryptionPipe []string
	DecryptionPipe []string

	// Prompt collects interactive input; defaults to stdin.
	Prompt auth.PromptFunc
}

// Run executes one full token lifecycle pass: load the store, authorize if
// demanded (or required because the store is empty), refresh an expired
// access token, print the token in the requested format, and optionally
// probe the mail endpoints. Every returned error is fatal for the
// invocation.
func Run(ctx context.Context, opts *Options) error {
	st := store.NewTokenStore(opts.TokenFile,
		store.NewPipeCipher(opts.EncryptionPipe, opts.DecryptionPipe))

	rec, err := st.Load()
	if err != nil {
		return err
	}
	log.Debugf("loaded record for provider %q, flow %q", rec.Registration, rec.AuthFlow)

	if rec.Empty() {
		if !opts.Authorize {
			return fmt.Errorf("no token file yet, run once with -authorize")
		}
		if rec, err = createRecord(opts); err != nil {
			return err
		}
		// The record is persisted before any exchange, exactly as entered.
		if err = st.Save(rec); err != nil {
			return err
		}
	}

	reg, err := provider.Lookup(rec.Registration, rec.Tenant)
	if err != nil {
		return err
	}

	engine := auth.NewEngine(reg, rec, st, auth.Options{
		NoBrowser:       opts.NoBrowser,
		Prompt:          opts.Prompt,
		OpenURL:         browser.OpenURL,
		CopyToClipboard: clipboard.WriteAll,
	})

	if opts.Authorize {
		flow := rec.AuthFlow
		if opts.AuthFlow != "" {
			flow = opts.AuthFlow
		}
		if err = engine.Authorize(ctx, flow); err != nil {
			return err
		}
	}

	if !rec.AccessTokenValid() {
		log.Info("access token missing or expired, refreshing")
		if err = engine.Refresh(ctx); err != nil {
			return err
		}
	}
	if !rec.AccessTokenValid() {
		// A refresh just succeeded at the protocol level, so an invalid
		// token here is an internal inconsistency, never ignored.
		return fmt.Errorf("no valid access token after refresh, this should not be able to happen")
	}

	output, err := sasl.Format(reg, rec.Email, rec.AccessToken, opts.Protocol, opts.Output)
	if err != nil {
		return err
	}
	fmt.Println(output)

	if opts.Test {
		return runProbes(reg, rec)
	}
	return nil
}

func runProbes(reg *provider.Registration, rec *store.Record) error {
	failed := 0
	for _, result := range mailprobe.New(reg, rec.Email, rec.AccessToken).Run() {
		if result.Err != nil {
			fmt.Printf("%s authentication FAILED: %v\n", result.Protocol, result.Err)
			failed++
		} else {
			fmt.Printf("%s authentication succeeded\n", result.Protocol)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of 3 protocol checks failed", failed)
	}
	return nil
}
