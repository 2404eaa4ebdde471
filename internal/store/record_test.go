package store

import (
	"testing"
	"time"
)

func TestAccessTokenValidAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		expiration string
		want       bool
	}{
		{"expiration in the future", now.Add(time.Hour).Format(time.RFC3339), true},
		{"expiration one second ahead", now.Add(time.Second).Format(time.RFC3339), true},
		{"expiration exactly now", now.Format(time.RFC3339), false},
		{"expiration in the past", now.Add(-time.Hour).Format(time.RFC3339), false},
		{"expiration unset", "", false},
		{"expiration garbage", "not-a-timestamp", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &Record{AccessToken: "tok", AccessTokenExpiration: tt.expiration}
			if got := rec.AccessTokenValidAt(now); got != tt.want {
				t.Errorf("AccessTokenValidAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccessTokenValidNilRecord(t *testing.T) {
	t.Parallel()

	var rec *Record
	if rec.AccessTokenValid() {
		t.Error("nil record reported a valid access token")
	}
}

func TestApplyTokens(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	rec := &Record{RefreshToken: "old-refresh"}
	rec.ApplyTokens("tok-1", 3600, "new-refresh", now)

	if rec.AccessToken != "tok-1" {
		t.Errorf("AccessToken = %q, want %q", rec.AccessToken, "tok-1")
	}
	wantExp := now.Add(time.Hour).Format(time.RFC3339)
	if rec.AccessTokenExpiration != wantExp {
		t.Errorf("AccessTokenExpiration = %q, want %q", rec.AccessTokenExpiration, wantExp)
	}
	if rec.RefreshToken != "new-refresh" {
		t.Errorf("RefreshToken = %q, want %q", rec.RefreshToken, "new-refresh")
	}

	// A refresh response without a refresh token keeps the stored one.
	rec.ApplyTokens("tok-2", 1800, "", now)
	if rec.RefreshToken != "new-refresh" {
		t.Errorf("RefreshToken after empty refresh = %q, want %q", rec.RefreshToken, "new-refresh")
	}
	if rec.AccessToken != "tok-2" {
		t.Errorf("AccessToken = %q, want %q", rec.AccessToken, "tok-2")
	}
}

func TestRecordEmpty(t *testing.T) {
	t.Parallel()

	if !(&Record{}).Empty() {
		t.Error("zero record should be empty")
	}
	if (&Record{Registration: "google"}).Empty() {
		t.Error("record with a registration should not be empty")
	}
}
