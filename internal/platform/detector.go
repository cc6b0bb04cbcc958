// Package platform provides platform-specific path detection for the
// reverse proxy configuration directories and certificate state.
package platform

import (
	"fmt"
	"os"
	"runtime"
)

// PathConfig contains the config paths for a proxy driver.
type PathConfig struct {
	Available string
	Enabled   string
}

// Paths contains the detected paths for all supported proxies plus
// certificate state directories.
type Paths struct {
	Nginx       PathConfig
	Caddy       PathConfig
	CertLiveDir string // where issued certificates live (letsencrypt layout)
	Fail2banDir string // jail.d directory, empty when not applicable
}

// Detect returns platform-specific default paths.
func Detect() (*Paths, error) {
	switch runtime.GOOS {
	case "darwin":
		return detectDarwin()
	case "linux":
		return detectLinux()
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectDarwin detects paths for macOS (Homebrew installations).
func detectDarwin() (*Paths, error) {
	prefix := ""
	switch {
	case pathExists("/opt/homebrew"):
		prefix = "/opt/homebrew" // Apple Silicon
	case pathExists("/usr/local"):
		prefix = "/usr/local" // Intel
	default:
		return nil, fmt.Errorf("homebrew installation not found (checked /opt/homebrew and /usr/local)")
	}

	return &Paths{
		Nginx: PathConfig{
			Available: prefix + "/etc/nginx/servers",
			Enabled:   prefix + "/etc/nginx/servers",
		},
		Caddy: PathConfig{
			Available: prefix + "/etc/caddy/sites-available",
			Enabled:   prefix + "/etc/caddy/sites-enabled",
		},
		CertLiveDir: prefix + "/etc/letsencrypt/live",
	}, nil
}

// detectLinux detects paths for Linux distributions.
func detectLinux() (*Paths, error) {
	paths := &Paths{
		Nginx: PathConfig{
			Available: "/etc/nginx/sites-available",
			Enabled:   "/etc/nginx/sites-enabled",
		},
		Caddy: PathConfig{
			Available: "/etc/caddy/sites-available",
			Enabled:   "/etc/caddy/sites-enabled",
		},
		CertLiveDir: "/etc/letsencrypt/live",
		Fail2banDir: "/etc/fail2ban/jail.d",
	}

	// RHEL/CentOS nginx ships conf.d without the sites-* split
	if !pathExists("/etc/nginx/sites-available") && pathExists("/etc/nginx/conf.d") {
		paths.Nginx = PathConfig{
			Available: "/etc/nginx/conf.d",
			Enabled:   "/etc/nginx/conf.d",
		}
	}

	return paths, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
