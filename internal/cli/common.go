package cli

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/output"
	"github.com/deckhand-sh/deckhand/internal/proxy"
)

// loadConfig loads the config through the injected loader
func loadConfig() (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadConfigAndDriver loads config and returns the appropriate driver
func loadConfigAndDriver() (*config.Config, proxy.Driver, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	paths, err := deps.PlatformDetector.DetectPaths()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to detect platform paths: %w", err)
	}

	var drvPaths proxy.Paths
	switch cfg.Driver {
	case "nginx":
		drvPaths = proxy.Paths{Available: paths.Nginx.Available, Enabled: paths.Nginx.Enabled}
	case "caddy":
		drvPaths = proxy.Paths{Available: paths.Caddy.Available, Enabled: paths.Caddy.Enabled}
	default:
		return nil, nil, fmt.Errorf("driver %s not found (supported: %s)", cfg.Driver, strings.Join(proxy.Supported(), ", "))
	}

	drv, err := deps.DriverFactory.Create(cfg.Driver, drvPaths)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create driver: %w", err)
	}

	return cfg, drv, nil
}

// certLiveDir returns the certificate live directory for the platform
func certLiveDir() string {
	if paths, err := deps.PlatformDetector.DetectPaths(); err == nil && paths.CertLiveDir != "" {
		return paths.CertLiveDir
	}
	return "/etc/letsencrypt/live"
}

// testAndReload tests config and reloads the proxy
// If rollback is provided, it will be called on test failure
func testAndReload(drv proxy.Driver, reload bool, rollback func() error) error {
	output.Info("Testing configuration...")
	if err := drv.Test(); err != nil {
		if rollback != nil {
			if rbErr := rollback(); rbErr != nil {
				output.Warn("Rollback failed: %v", rbErr)
			}
		}
		return fmt.Errorf("configuration test failed: %w", err)
	}

	if reload {
		output.Info("Reloading %s...", drv.Name())
		if err := drv.Reload(); err != nil {
			return fmt.Errorf("failed to reload %s: %w", drv.Name(), err)
		}
	}

	return nil
}

// saveConfig saves the config and returns error instead of just warning
func saveConfig(cfg *config.Config) error {
	if err := deps.ConfigLoader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// validateDomain checks if domain is valid
func validateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain cannot be empty")
	}
	if strings.Contains(domain, " ") {
		return fmt.Errorf("domain cannot contain spaces")
	}
	if strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") {
		return fmt.Errorf("domain cannot start or end with hyphen")
	}
	return nil
}

// validateRoot checks if root path is valid
func validateRoot(root string) error {
	if root == "" {
		return nil // empty is allowed (will be validated elsewhere if required)
	}
	if !filepath.IsAbs(root) {
		return fmt.Errorf("root path must be absolute: %s", root)
	}
	return nil
}

// validateUpstream checks if an upstream target is valid
func validateUpstream(upstream string) error {
	if upstream == "" {
		return nil
	}

	// Allow host:port format without scheme
	if !strings.Contains(upstream, "://") {
		upstream = "http://" + upstream
	}

	_, err := url.Parse(upstream)
	if err != nil {
		return fmt.Errorf("invalid upstream: %w", err)
	}

	return nil
}

// CommandResult represents a common result structure for CLI commands
type CommandResult struct {
	Success bool   `json:"success"`
	Domain  string `json:"domain"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

// newSuccessResult creates a success result
func newSuccessResult(domain, action string) CommandResult {
	return CommandResult{
		Success: true,
		Domain:  domain,
		Action:  action,
	}
}
