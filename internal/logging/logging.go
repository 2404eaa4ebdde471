// Package logging configures the shared logrus instance used across the
// program.
package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

var setupOnce sync.Once

// Formatter renders log entries as
// [2026-02-03 10:41:07] [debug] [store.go:52] message.
type Formatter struct{}

// Format renders a single log entry.
func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	var buffer *bytes.Buffer
	if entry.Buffer != nil {
		buffer = entry.Buffer
	} else {
		buffer = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	message := strings.TrimRight(entry.Message, "\r\n")

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}

	if entry.Caller != nil {
		fmt.Fprintf(buffer, "[%s] [%-5s] [%s:%d] %s\n", timestamp, level,
			filepath.Base(entry.Caller.File), entry.Caller.Line, message)
	} else {
		fmt.Fprintf(buffer, "[%s] [%-5s] %s\n", timestamp, level, message)
	}
	return buffer.Bytes(), nil
}

// Setup initializes the global logger once. Diagnostics go to stderr so
// the access token on stdout stays machine-readable.
func Setup() {
	setupOnce.Do(func() {
		log.SetOutput(os.Stderr)
		log.SetReportCaller(true)
		log.SetFormatter(&Formatter{})
		log.SetLevel(log.WarnLevel)
	})
}

// SetVerbosity raises the log level: verbose enables Info, debug enables
// Debug (debug wins when both are set).
func SetVerbosity(verbose, debug bool) {
	switch {
	case debug:
		log.SetLevel(log.DebugLevel)
	case verbose:
		log.SetLevel(log.InfoLevel)
	}
}
