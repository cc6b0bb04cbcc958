package proxy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/executor"
)

func newTestCaddy(t *testing.T) (*CaddyDriver, *executor.MockExecutor) {
	t.Helper()
	dir := t.TempDir()
	mock := &executor.MockExecutor{}
	drv := NewCaddy(Paths{
		Available: filepath.Join(dir, "sites-available"),
		Enabled:   filepath.Join(dir, "sites-enabled"),
	}, mock)
	return drv, mock
}

func TestCaddyAddUsesExtension(t *testing.T) {
	drv, _ := newTestCaddy(t)

	site := &config.Site{Domain: "example.com", Type: config.TypeStatic}
	if err := drv.Add(site, "example.com {\n}\n"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(drv.Paths().Available, "example.com.caddy")); err != nil {
		t.Errorf("expected example.com.caddy to exist: %v", err)
	}
}

func TestCaddyEnableDisableRemove(t *testing.T) {
	drv, _ := newTestCaddy(t)
	site := &config.Site{Domain: "example.com", Type: config.TypeStatic}
	if err := drv.Add(site, "example.com {\n}\n"); err != nil {
		t.Fatal(err)
	}

	if err := drv.Enable("example.com"); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	enabled, err := drv.IsEnabled("example.com")
	if err != nil || !enabled {
		t.Fatalf("IsEnabled = %v, %v; want true, nil", enabled, err)
	}

	if err := drv.Disable("example.com"); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}

	if err := drv.Enable("example.com"); err != nil {
		t.Fatal(err)
	}
	if err := drv.Remove("example.com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if enabled, _ := drv.IsEnabled("example.com"); enabled {
		t.Error("removed site should not remain enabled")
	}
}

func TestCaddyListStripsExtension(t *testing.T) {
	drv, _ := newTestCaddy(t)

	for _, d := range []string{"a.com", "b.com"} {
		if err := drv.Add(&config.Site{Domain: d, Type: config.TypeStatic}, "{}"); err != nil {
			t.Fatal(err)
		}
	}
	// Stray non-caddy file is ignored
	if err := os.WriteFile(filepath.Join(drv.Paths().Available, "README"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	domains, err := drv.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(domains) != 2 {
		t.Fatalf("expected 2 domains, got %v", domains)
	}
	for _, d := range domains {
		if filepath.Ext(d) == ".caddy" {
			t.Errorf("extension should be stripped from %s", d)
		}
	}
}

func TestCaddyTestAndReload(t *testing.T) {
	drv, mock := newTestCaddy(t)

	if err := drv.Test(); err != nil {
		t.Errorf("Test failed: %v", err)
	}
	if mock.Calls[0].Name != "caddy" || mock.Calls[0].Args[0] != "validate" {
		t.Errorf("expected caddy validate, got %+v", mock.Calls[0])
	}

	mock.Calls = nil
	mock.ExecuteFunc = func(name string, args ...string) ([]byte, error) {
		if name == "systemctl" {
			return nil, errors.New("no systemd")
		}
		return []byte(""), nil
	}
	if err := drv.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	last := mock.Calls[len(mock.Calls)-1]
	if last.Name != "caddy" || last.Args[0] != "reload" {
		t.Errorf("expected caddy reload fallback, got %+v", last)
	}
}

func TestDriverFactory(t *testing.T) {
	paths := Paths{Available: "/tmp/a", Enabled: "/tmp/e"}

	for _, name := range Supported() {
		drv, err := New(name, paths, &executor.MockExecutor{})
		if err != nil {
			t.Fatalf("New(%s) failed: %v", name, err)
		}
		if drv.Name() != name {
			t.Errorf("driver name mismatch: %s != %s", drv.Name(), name)
		}
	}

	if _, err := New("apache", paths, nil); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
