package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestRefresh(t *testing.T) {
	t.Parallel()

	var form map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		form = map[string]string{
			"grant_type":    r.PostForm.Get("grant_type"),
			"refresh_token": r.PostForm.Get("refresh_token"),
			"client_id":     r.PostForm.Get("client_id"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh","expires_in":3600}`))
	})
	fix := newFixture(t, mux, nil)
	fix.rec.RefreshToken = "ref-1"

	if err := fix.engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if form["grant_type"] != "refresh_token" || form["refresh_token"] != "ref-1" {
		t.Errorf("refresh request = %v", form)
	}
	if fix.rec.AccessToken != "fresh" {
		t.Errorf("AccessToken = %q, want fresh", fix.rec.AccessToken)
	}
	// The response carried no refresh_token; the stored one survives.
	if fix.rec.RefreshToken != "ref-1" {
		t.Errorf("RefreshToken = %q, want ref-1", fix.rec.RefreshToken)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh","expires_in":3600,"refresh_token":"ref-2"}`))
	})
	fix := newFixture(t, mux, nil)
	fix.rec.RefreshToken = "ref-1"

	if err := fix.engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if fix.rec.RefreshToken != "ref-2" {
		t.Errorf("RefreshToken = %q, want ref-2", fix.rec.RefreshToken)
	}
}

func TestRefreshWithoutToken(t *testing.T) {
	t.Parallel()

	fix := newFixture(t, http.NewServeMux(), nil)
	if err := fix.engine.Refresh(context.Background()); !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("Refresh() error = %v, want ErrNoRefreshToken", err)
	}
}

func TestRefreshRejected(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"revoked"}`))
	})
	fix := newFixture(t, mux, nil)
	fix.rec.RefreshToken = "ref-1"
	fix.rec.AccessToken = "stale"

	err := fix.engine.Refresh(context.Background())
	if err == nil {
		t.Fatal("Refresh() succeeded on a rejected token")
	}
	if !strings.Contains(err.Error(), "try running once with -authorize") {
		t.Errorf("error %q does not point at re-authorization", err)
	}
	var oe *OAuthError
	if !errors.As(err, &oe) || oe.Code != "invalid_grant" {
		t.Errorf("error %v does not wrap the provider error", err)
	}
	if fix.rec.AccessToken != "stale" {
		t.Error("failed refresh mutated the record")
	}
}
