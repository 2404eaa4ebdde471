// Package callback implements the one-shot local HTTP server that receives
// the browser redirect of the localhostauthcode flow. The server serves a
// single authorization response, renders a small result page, and reports
// the outcome through its own return value rather than shared state.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Result carries the parameters the provider redirected back with: either
// an authorization code or an error pair.
type Result struct {
	Code             string
	Error            string
	ErrorDescription string
}

// EphemeralPort asks the OS for a free local port by binding port 0 and
// reading back the assignment, then releases it so the callback server can
// bind the same port. The redirect URI has to name the port before the
// server exists, which is why the port is discovered up front.
func EphemeralPort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to pick a local port: %w", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err = l.Close(); err != nil {
		return 0, fmt.Errorf("failed to release port %d: %w", port, err)
	}
	return port, nil
}

// Server listens for exactly one authorization redirect on 127.0.0.1.
type Server struct {
	port       int
	server     *http.Server
	resultChan chan *Result
	errorChan  chan error
}

// New creates a callback server for the given port.
func New(port int) *Server {
	return &Server{
		port:       port,
		resultChan: make(chan *Result, 1),
		errorChan:  make(chan error, 1),
	}
}

// Start binds the listener and begins serving in the background. It returns
// once the port is bound, so the operator can be pointed at the
// authorization URL knowing the redirect target is live.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to bind callback port %d: %w", s.port, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRedirect)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Capture the server locally: shutdown() clears s.server, and the
	// goroutine may not have started serving yet when that happens.
	server := s.server
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errorChan <- fmt.Errorf("callback server failed: %w", err)
		}
	}()

	log.Debugf("callback server listening on 127.0.0.1:%d", s.port)
	return nil
}

// Wait blocks until the redirect arrives or the context is canceled. A
// canceled wait (operator abort) yields a nil result and a nil error; the
// caller treats that as "no code obtained". The server is shut down before
// Wait returns.
func (s *Server) Wait(ctx context.Context) (*Result, error) {
	defer s.shutdown()

	select {
	case result := <-s.resultChan:
		return result, nil
	case err := <-s.errorChan:
		return nil, err
	case <-ctx.Done():
		log.Debug("callback wait interrupted")
		return nil, nil
	}
}

func (s *Server) shutdown() {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	s.server = nil
}

// handleRedirect processes the single authorization redirect. Requests
// without any OAuth parameters (such as a browser's favicon probe) get a
// 404 and do not consume the one permitted exchange.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	result := &Result{
		Code:             query.Get("code"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}
	if result.Code == "" && result.Error == "" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if result.Code != "" {
		_, _ = w.Write([]byte(successPage))
	} else {
		_, _ = w.Write([]byte(renderErrorPage(query)))
	}

	select {
	case s.resultChan <- result:
	default:
		// A second redirect after the first was already delivered; drop it.
		log.Warn("duplicate authorization redirect ignored")
	}
}
