package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Driver != "nginx" {
		t.Errorf("expected default driver nginx, got %s", cfg.Driver)
	}
	if cfg.ACME.Backend != BackendNative {
		t.Errorf("expected native backend, got %s", cfg.ACME.Backend)
	}
	if cfg.DNS.TTL != 300 {
		t.Errorf("expected default TTL 300, got %d", cfg.DNS.TTL)
	}
	if cfg.Sites == nil {
		t.Error("sites map should be initialized")
	}
}

func TestLoadFrom(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("LoadFrom failed: %v", err)
		}
		if cfg.Driver != "nginx" {
			t.Errorf("expected default config, got driver %s", cfg.Driver)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")

		cfg := New()
		cfg.Driver = "caddy"
		cfg.ACME.Email = "admin@example.com"
		cfg.DNS.Zone = "example.com"
		cfg.Sites["example.com"] = &Site{
			Domain:    "example.com",
			Type:      TypeProxy,
			Upstream:  "http://127.0.0.1:3000",
			Enabled:   true,
			CreatedAt: time.Now(),
		}

		if err := cfg.SaveTo(path); err != nil {
			t.Fatalf("SaveTo failed: %v", err)
		}

		loaded, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("LoadFrom failed: %v", err)
		}
		if loaded.Driver != "caddy" {
			t.Errorf("expected caddy driver, got %s", loaded.Driver)
		}
		if loaded.ACME.Email != "admin@example.com" {
			t.Errorf("email not preserved: %s", loaded.ACME.Email)
		}
		site, err := loaded.GetSite("example.com")
		if err != nil {
			t.Fatalf("GetSite failed: %v", err)
		}
		if site.Upstream != "http://127.0.0.1:3000" {
			t.Errorf("upstream not preserved: %s", site.Upstream)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("driver: [broken"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFrom(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("DECKHAND_DRIVER", "caddy")
		t.Setenv("DECKHAND_DNS_TOKEN", "s3cret")

		cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("LoadFrom failed: %v", err)
		}
		if cfg.Driver != "caddy" {
			t.Errorf("env override not applied, got driver %s", cfg.Driver)
		}
		if cfg.DNS.Token != "s3cret" {
			t.Error("token should come from environment")
		}
	})

	t.Run("token never saved to yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		cfg := New()
		cfg.DNS.Token = "super-secret"
		if err := cfg.SaveTo(path); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Contains(data, []byte("super-secret")) {
			t.Error("token must not be written to the config file")
		}
	})
}

func TestSiteRegistry(t *testing.T) {
	cfg := New()
	site := &Site{Domain: "example.com", Type: TypeStatic, Root: "/var/www/html"}

	if err := cfg.AddSite(site); err != nil {
		t.Fatalf("AddSite failed: %v", err)
	}
	if err := cfg.AddSite(site); err == nil {
		t.Error("duplicate AddSite should fail")
	}

	got, err := cfg.GetSite("example.com")
	if err != nil {
		t.Fatalf("GetSite failed: %v", err)
	}
	if got.Root != "/var/www/html" {
		t.Errorf("unexpected root: %s", got.Root)
	}

	if _, err := cfg.GetSite("missing.com"); err == nil {
		t.Error("GetSite for unknown domain should fail")
	}

	if len(cfg.ListSites()) != 1 {
		t.Errorf("expected 1 site, got %d", len(cfg.ListSites()))
	}

	if err := cfg.RemoveSite("example.com"); err != nil {
		t.Fatalf("RemoveSite failed: %v", err)
	}
	if err := cfg.RemoveSite("example.com"); err == nil {
		t.Error("removing a missing site should fail")
	}
}

func TestSiteTypes(t *testing.T) {
	for _, valid := range []string{"static", "proxy", "container", "redirect"} {
		if !IsValidType(valid) {
			t.Errorf("%s should be a valid type", valid)
		}
	}
	for _, invalid := range []string{"", "php", "wordpress", "STATIC"} {
		if IsValidType(invalid) {
			t.Errorf("%s should not be a valid type", invalid)
		}
	}
}

func TestServerNames(t *testing.T) {
	site := &Site{Domain: "example.com", Aliases: []string{"www.example.com"}}
	names := site.ServerNames()
	if len(names) != 2 || names[0] != "example.com" || names[1] != "www.example.com" {
		t.Errorf("unexpected server names: %v", names)
	}
}
