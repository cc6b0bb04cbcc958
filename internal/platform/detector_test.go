package platform

import (
	"runtime"
	"testing"
)

func TestDetect(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("unsupported platform")
	}

	paths, err := Detect()
	if runtime.GOOS == "darwin" && err != nil {
		// CI machines without homebrew are acceptable
		t.Skipf("no homebrew: %v", err)
	}
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if paths.Nginx.Available == "" || paths.Nginx.Enabled == "" {
		t.Error("nginx paths should not be empty")
	}
	if paths.Caddy.Available == "" {
		t.Error("caddy paths should not be empty")
	}
	if paths.CertLiveDir == "" {
		t.Error("cert live dir should not be empty")
	}
}

func TestDetectLinuxDefaults(t *testing.T) {
	paths, err := detectLinux()
	if err != nil {
		t.Fatalf("detectLinux failed: %v", err)
	}

	// On Debian-style or bare systems the sites-* layout is the default
	if paths.Nginx.Available != "/etc/nginx/sites-available" &&
		paths.Nginx.Available != "/etc/nginx/conf.d" {
		t.Errorf("unexpected nginx available dir: %s", paths.Nginx.Available)
	}
	if paths.Fail2banDir != "/etc/fail2ban/jail.d" {
		t.Errorf("unexpected fail2ban dir: %s", paths.Fail2banDir)
	}
}

func TestPathExists(t *testing.T) {
	if !pathExists("/") {
		t.Error("root should exist")
	}
	if pathExists("/nonexistent-deckhand-test-dir-xyz") {
		t.Error("bogus path should not exist")
	}
}
