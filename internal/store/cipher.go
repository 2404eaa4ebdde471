package store

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Cipher transforms the serialized record between its in-memory plaintext
// and its at-rest form. The production implementation shells out to an
// external pipe pair; tests use Identity.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// Default pipe command lines. They read from standard input, write to
// standard output and exit non-zero on failure. GPG encrypt-to-self keeps
// the token file useless to anyone without the operator's private key.
var (
	DefaultEncryptionPipe = []string{"gpg", "--encrypt", "--default-recipient-self"}
	DefaultDecryptionPipe = []string{"gpg", "--decrypt"}
)

// PipeCipher runs external filter commands over stdin/stdout.
type PipeCipher struct {
	EncryptArgv []string
	DecryptArgv []string
}

// NewPipeCipher builds a PipeCipher from two argv slices, falling back to
// the GPG defaults for whichever slice is empty.
func NewPipeCipher(encryptArgv, decryptArgv []string) *PipeCipher {
	if len(encryptArgv) == 0 {
		encryptArgv = DefaultEncryptionPipe
	}
	if len(decryptArgv) == 0 {
		decryptArgv = DefaultDecryptionPipe
	}
	return &PipeCipher{EncryptArgv: encryptArgv, DecryptArgv: decryptArgv}
}

// Encrypt pipes plaintext through the encryption command.
func (c *PipeCipher) Encrypt(plaintext []byte) ([]byte, error) {
	out, err := runPipe(c.EncryptArgv, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encryption pipe %q failed: %w", strings.Join(c.EncryptArgv, " "), err)
	}
	return out, nil
}

// Decrypt pipes ciphertext through the decryption command.
func (c *PipeCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	out, err := runPipe(c.DecryptArgv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decryption pipe %q failed (is your decryption agent primed for "+
			"non-interactive use, or GPG_TTY set so the agent can prompt from inside a pipe?): %w",
			strings.Join(c.DecryptArgv, " "), err)
	}
	return out, nil
}

func runPipe(argv []string, input []byte) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty pipe command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Identity is a pass-through cipher for tests and debugging.
type Identity struct{}

func (Identity) Encrypt(plaintext []byte) ([]byte, error)  { return plaintext, nil }
func (Identity) Decrypt(ciphertext []byte) ([]byte, error) { return ciphertext, nil }
