package dns

import (
	"errors"
	"strings"
	"testing"
)

func TestChallengeProviderPresent(t *testing.T) {
	mock := NewMockProvider("example.com")
	cp := NewChallengeProvider(mock)

	if err := cp.Present("example.com", "token", "keyAuth-value"); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	if len(mock.SetCalls) != 1 {
		t.Fatalf("expected 1 Set call, got %d", len(mock.SetCalls))
	}
	rec := mock.SetCalls[0]
	if rec.Type != "TXT" {
		t.Errorf("expected TXT record, got %s", rec.Type)
	}
	if !strings.HasPrefix(rec.Name, "_acme-challenge") {
		t.Errorf("expected _acme-challenge name, got %s", rec.Name)
	}
	if strings.Contains(rec.Name, "example.com") {
		t.Errorf("record name should be zone-relative, got %s", rec.Name)
	}
	if rec.Content == "" {
		t.Error("challenge value should not be empty")
	}
	if rec.TTL != challengeTTL {
		t.Errorf("expected TTL %d, got %d", challengeTTL, rec.TTL)
	}
}

func TestChallengeProviderSubdomain(t *testing.T) {
	mock := NewMockProvider("example.com")
	cp := NewChallengeProvider(mock)

	if err := cp.Present("app.example.com", "token", "keyAuth-value"); err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	if mock.SetCalls[0].Name != "_acme-challenge.app" {
		t.Errorf("expected _acme-challenge.app, got %s", mock.SetCalls[0].Name)
	}
}

func TestChallengeProviderCleanUp(t *testing.T) {
	mock := NewMockProvider("example.com")
	cp := NewChallengeProvider(mock)

	if err := cp.Present("example.com", "token", "keyAuth-value"); err != nil {
		t.Fatal(err)
	}
	if err := cp.CleanUp("example.com", "token", "keyAuth-value"); err != nil {
		t.Fatalf("CleanUp failed: %v", err)
	}

	if len(mock.Records) != 0 {
		t.Errorf("challenge record should be removed, got %v", mock.Records)
	}
}

func TestChallengeProviderSetFailure(t *testing.T) {
	mock := NewMockProvider("example.com")
	mock.SetErr = errors.New("api down")
	cp := NewChallengeProvider(mock)

	if err := cp.Present("example.com", "token", "keyAuth"); err == nil {
		t.Error("expected error when provider fails")
	}
}

func TestChallengeProviderTimeout(t *testing.T) {
	cp := NewChallengeProvider(NewMockProvider("example.com"))
	timeout, interval := cp.Timeout()
	if timeout <= 0 || interval <= 0 {
		t.Error("timeout and interval must be positive")
	}
	if interval >= timeout {
		t.Error("poll interval should be smaller than the total timeout")
	}
}

func TestRelativeName(t *testing.T) {
	cp := NewChallengeProvider(NewMockProvider("example.com"))

	tests := []struct {
		fqdn string
		want string
	}{
		{"_acme-challenge.example.com.", "_acme-challenge"},
		{"_acme-challenge.app.example.com.", "_acme-challenge.app"},
		{"example.com.", "@"},
	}
	for _, tt := range tests {
		if got := cp.relativeName(tt.fqdn); got != tt.want {
			t.Errorf("relativeName(%q) = %q, want %q", tt.fqdn, got, tt.want)
		}
	}
}
