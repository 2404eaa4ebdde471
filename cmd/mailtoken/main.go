// Package main is the mailtoken entry point. The tool obtains and prints a
// valid OAuth2 access token for a mail account, maintaining its state in an
// encrypted token file. Run with "-authorize" to get started or whenever
// all tokens have expired; delete the token file to truly start over.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/mailtoken/mailtoken/internal/auth"
	"github.com/mailtoken/mailtoken/internal/cmd"
	"github.com/mailtoken/mailtoken/internal/config"
	"github.com/mailtoken/mailtoken/internal/logging"
	"github.com/mailtoken/mailtoken/internal/provider"
	"github.com/mailtoken/mailtoken/internal/sasl"
)

var Version = "dev"

func init() {
	logging.Setup()
}

func main() {
	// A .env next to the binary can hold client id/secret defaults.
	_ = godotenv.Load()

	var (
		verbose        bool
		debug          bool
		authorize      bool
		authFlow       string
		test           bool
		output         string
		protocol       string
		noBrowser      bool
		providerName   string
		email          string
		clientID       string
		clientSecret   string
		tenant         string
		redirectURI    string
		encryptionPipe string
		decryptionPipe string
		configPath     string
		showVersion    bool
	)

	flag.BoolVar(&verbose, "verbose", false, "increase verbosity")
	flag.BoolVar(&verbose, "v", false, "increase verbosity (shorthand)")
	flag.BoolVar(&debug, "debug", false, "enable debug output, including raw token responses")
	flag.BoolVar(&debug, "d", false, "enable debug output (shorthand)")
	flag.BoolVar(&authorize, "authorize", false, "manually authorize new tokens")
	flag.BoolVar(&authorize, "a", false, "manually authorize new tokens (shorthand)")
	flag.StringVar(&authFlow, "authflow", "", "authorization flow: "+strings.Join(auth.FlowNames(), " | "))
	flag.BoolVar(&test, "test", false, "test the IMAP/POP/SMTP endpoints with the obtained token")
	flag.BoolVar(&test, "t", false, "test the mail endpoints (shorthand)")
	flag.StringVar(&output, "output", sasl.ModePlain,
		"output format: plain | sasl | sasl-prefixed")
	flag.StringVar(&protocol, "protocol", sasl.ProtocolIMAP,
		"target protocol for SASL output: imap | pop | smtp")
	flag.BoolVar(&noBrowser, "no-browser", false, "don't open the authorization URL in a browser")
	flag.StringVar(&providerName, "provider", "",
		"provider registration ("+strings.Join(provider.Names(), ", ")+"), first run only")
	flag.StringVar(&email, "email", "", "account e-mail address, first run only")
	flag.StringVar(&clientID, "client-id", "", "OAuth2 client id, first run only")
	flag.StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret, first run only")
	flag.StringVar(&tenant, "tenant", "", "directory tenant override (microsoft only), first run only")
	flag.StringVar(&redirectURI, "redirect-uri", "", "redirect URI override, first run only")
	flag.StringVar(&encryptionPipe, "encryption-pipe", "",
		"encryption command reading plaintext on stdin, writing ciphertext on stdout")
	flag.StringVar(&decryptionPipe, "decryption-pipe", "",
		"decryption command reading ciphertext on stdin, writing plaintext on stdout")
	flag.StringVar(&configPath, "config", "", "settings file path")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: %s [flags] TOKENFILE\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(out, "Obtains and prints a valid OAuth2 access token for a mail account.\n")
		fmt.Fprintf(out, "State is kept in the encrypted TOKENFILE.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("mailtoken %s\n", Version)
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logging.SetVerbosity(verbose, debug)

	cfg, err := loadSettings(configPath)
	if err != nil {
		fatal(err)
	}

	opts := &cmd.Options{
		TokenFile:    flag.Arg(0),
		Authorize:    authorize,
		AuthFlow:     authFlow,
		Test:         test,
		Output:       output,
		Protocol:     protocol,
		NoBrowser:    noBrowser || cfg.NoBrowser,
		Provider:     firstOf(providerName, cfg.Provider),
		Email:        firstOf(email, cfg.Email),
		ClientID:     firstOf(clientID, cfg.ClientID),
		ClientSecret: firstOf(clientSecret, cfg.ClientSecret),
		Tenant:       firstOf(tenant, cfg.Tenant),
		RedirectURI:  firstOf(redirectURI, cfg.RedirectURI),
	}
	if opts.EncryptionPipe, err = pipeArgv(firstOf(encryptionPipe, cfg.EncryptionPipe)); err != nil {
		fatal(err)
	}
	if opts.DecryptionPipe, err = pipeArgv(firstOf(decryptionPipe, cfg.DecryptionPipe)); err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err = cmd.Run(ctx, opts); err != nil {
		fatal(err)
	}
}

// loadSettings reads the YAML settings file. The default location is
// optional; a path given explicitly must exist.
func loadSettings(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path, false)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return &config.Config{}, nil
	}
	return config.Load(filepath.Join(dir, "mailtoken", "config.yaml"), true)
}

func pipeArgv(command string) ([]string, error) {
	if command == "" {
		return nil, nil
	}
	return config.SplitCommand(command)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func fatal(err error) {
	log.Debugf("fatal: %v", err)
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
