package dns

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deckhand-sh/deckhand/internal/errors"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *RESTProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewRESTProvider(srv.URL, "example.com", "test-token")
	if err != nil {
		t.Fatalf("NewRESTProvider failed: %v", err)
	}
	p.SetHTTPClient(srv.Client())
	return p
}

func TestNewRESTProviderValidation(t *testing.T) {
	tests := []struct {
		name             string
		url, zone, token string
	}{
		{"missing url", "", "example.com", "tok"},
		{"missing zone", "https://dns.example", "", "tok"},
		{"missing token", "https://dns.example", "example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRESTProvider(tt.url, tt.zone, tt.token); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRESTProviderList(t *testing.T) {
	records := []Record{
		{Type: "A", Name: "@", Content: "203.0.113.7", TTL: 300},
		{Type: "TXT", Name: "_acme-challenge", Content: "abc123", TTL: 120},
	}

	var gotAuth, gotPath string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(records)
	})

	got, err := p.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 records, got %d", len(got))
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("unexpected auth header: %s", gotAuth)
	}
	if gotPath != "/zones/example.com/records" {
		t.Errorf("unexpected path: %s", gotPath)
	}
}

func TestRESTProviderSet(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotMethod, gotPath string
		var gotBody Record
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusOK)
		})

		rec := Record{Type: "A", Name: "www", Content: "203.0.113.7", TTL: 300}
		if err := p.Set(context.Background(), rec); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if gotMethod != http.MethodPut {
			t.Errorf("expected PUT, got %s", gotMethod)
		}
		if gotPath != "/zones/example.com/records/www/A" {
			t.Errorf("unexpected path: %s", gotPath)
		}
		if gotBody.Content != "203.0.113.7" {
			t.Errorf("body not sent: %+v", gotBody)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})
		if err := p.Set(context.Background(), Record{Content: "x"}); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("server error", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		err := p.Set(context.Background(), Record{Type: "A", Name: "www", Content: "1.2.3.4"})
		if err == nil {
			t.Fatal("expected error for 401")
		}
		var opErr *errors.OpError
		if !errors.As(err, &opErr) || opErr.Code != errors.ErrCodeDNS {
			t.Errorf("expected DNS-coded error, got %v", err)
		}
	})
}

func TestRESTProviderDelete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
			w.WriteHeader(http.StatusNoContent)
		})
		if err := p.Delete(context.Background(), "www", "A"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		err := p.Delete(context.Background(), "missing", "A")
		if !errors.Is(err, errors.ErrRecordNotFound) {
			t.Errorf("expected record-not-found error, got %v", err)
		}
	})
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider("example.com")
	ctx := context.Background()

	rec := Record{Type: "A", Name: "www", Content: "203.0.113.7", TTL: 300}
	if err := m.Set(ctx, rec); err != nil {
		t.Fatal(err)
	}

	// Upsert replaces rather than duplicates
	rec.Content = "203.0.113.8"
	if err := m.Set(ctx, rec); err != nil {
		t.Fatal(err)
	}
	records, _ := m.List(ctx)
	if len(records) != 1 {
		t.Fatalf("expected 1 record after upsert, got %d", len(records))
	}
	if records[0].Content != "203.0.113.8" {
		t.Errorf("upsert should replace content, got %s", records[0].Content)
	}

	if err := m.Delete(ctx, "www", "A"); err != nil {
		t.Fatal(err)
	}
	records, _ = m.List(ctx)
	if len(records) != 0 {
		t.Errorf("expected empty zone after delete, got %v", records)
	}
}
