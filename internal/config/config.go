// Package config loads the optional settings file and environment
// defaults. Everything here can also be supplied per invocation through
// flags; the file only spares the operator from repeating pipe commands
// and client registration values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the persistent settings of the tool. All fields are
// optional; zero values defer to built-in defaults or interactive prompts.
type Config struct {
	// EncryptionPipe and DecryptionPipe are command lines that read
	// plaintext/ciphertext on stdin and write the opposite on stdout.
	EncryptionPipe string `yaml:"encryption-pipe"`
	DecryptionPipe string `yaml:"decryption-pipe"`

	// NoBrowser suppresses automatic browser launching during
	// authorization.
	NoBrowser bool `yaml:"no-browser"`

	// Defaults used only when creating a new credential record.
	Provider     string `yaml:"provider"`
	Email        string `yaml:"email"`
	ClientID     string `yaml:"client-id"`
	ClientSecret string `yaml:"client-secret"`
	Tenant       string `yaml:"tenant"`
	RedirectURI  string `yaml:"redirect-uri"`
}

// Load reads the YAML settings file. A missing file yields an empty config
// when optional is true (the default path may simply not exist); an
// explicitly named file must exist.
func Load(path string, optional bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && optional {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	cfg.applyEnv()
	return &cfg, nil
}

// applyEnv fills still-empty client registration values from the
// environment (a .env file is loaded by main before this runs).
func (c *Config) applyEnv() {
	if c.ClientID == "" {
		c.ClientID = os.Getenv("MAILTOKEN_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		c.ClientSecret = os.Getenv("MAILTOKEN_CLIENT_SECRET")
	}
	if c.Email == "" {
		c.Email = os.Getenv("MAILTOKEN_EMAIL")
	}
}
