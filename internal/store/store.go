// Package store persists the OAuth credential record encrypted at rest.
//
// The token file contains multi-use bearer tokens whose possession alone
// grants mailbox access, so the file mode must be exactly owner read/write
// and the content is always piped through an external encryption command
// before it touches disk.
package store

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	log "github.com/sirupsen/logrus"
)

// FileMode is the only acceptable permission set for the token file.
const FileMode fs.FileMode = 0o600

// TokenStore reads and writes one credential record at a fixed path.
type TokenStore struct {
	path   string
	cipher Cipher
}

// NewTokenStore creates a store for the given path. A nil cipher selects
// the default GPG pipe pair.
func NewTokenStore(path string, cipher Cipher) *TokenStore {
	if cipher == nil {
		cipher = NewPipeCipher(nil, nil)
	}
	return &TokenStore{path: path, cipher: cipher}
}

// Path returns the token file location.
func (s *TokenStore) Path() string {
	return s.path
}

// Load reads, decrypts and parses the token file. A missing file yields an
// empty record, not an error; anything else that goes wrong (unsafe mode,
// failing decryption pipe, malformed content) is an error the caller must
// treat as fatal.
func (s *TokenStore) Load() (*Record, error) {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		log.Debugf("token file %s does not exist, starting with empty record", s.path)
		return &Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat token file: %w", err)
	}
	if err = checkMode(info.Mode()); err != nil {
		return nil, err
	}

	ciphertext, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	plaintext, err := s.cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err = json.Unmarshal(plaintext, &rec); err != nil {
		return nil, fmt.Errorf("token file is not a valid record, delete it and start over: %w", err)
	}
	return &rec, nil
}

// Save serializes and encrypts the record, then writes it back. The file is
// created mode 0600 when absent, and the mode is re-validated immediately
// before every write in case it was changed underneath us since Load.
func (s *TokenStore) Save(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("nothing to save")
	}

	if info, err := os.Stat(s.path); err == nil {
		if err = checkMode(info.Mode()); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat token file: %w", err)
	}

	plaintext, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize record: %w", err)
	}
	ciphertext, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileMode)
	if err != nil {
		return fmt.Errorf("open token file for writing: %w", err)
	}
	if _, err = f.Write(ciphertext); err != nil {
		_ = f.Close()
		return fmt.Errorf("write token file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}
	log.Debugf("saved credential record to %s", s.path)
	return nil
}

func checkMode(mode fs.FileMode) error {
	if mode.Perm() != FileMode {
		return fmt.Errorf("token file has unsafe mode %04o (must be %04o), delete it and start over",
			mode.Perm(), FileMode)
	}
	return nil
}
