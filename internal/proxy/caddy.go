package proxy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/executor"
)

// caddyExt is appended to vhost file names so the main Caddyfile can
// import sites-enabled/*.caddy without picking up editor backups.
const caddyExt = ".caddy"

// CaddyDriver implements the Driver interface for Caddy
type CaddyDriver struct {
	paths Paths
	exec  executor.CommandExecutor
}

// NewCaddy creates a new Caddy driver
func NewCaddy(paths Paths, exec executor.CommandExecutor) *CaddyDriver {
	if exec == nil {
		exec = executor.NewSystemExecutor()
	}
	return &CaddyDriver{paths: paths, exec: exec}
}

// Name returns the driver name
func (c *CaddyDriver) Name() string {
	return "caddy"
}

// Paths returns the config paths
func (c *CaddyDriver) Paths() Paths {
	return c.paths
}

func (c *CaddyDriver) availablePath(domain string) string {
	return filepath.Join(c.paths.Available, domain+caddyExt)
}

func (c *CaddyDriver) enabledPath(domain string) string {
	return filepath.Join(c.paths.Enabled, domain+caddyExt)
}

// Add writes a rendered vhost config
func (c *CaddyDriver) Add(site *config.Site, configContent string) error {
	if err := os.MkdirAll(c.paths.Available, 0755); err != nil {
		return fmt.Errorf("failed to create sites-available directory: %w", err)
	}
	if err := os.MkdirAll(c.paths.Enabled, 0755); err != nil {
		return fmt.Errorf("failed to create sites-enabled directory: %w", err)
	}

	if err := os.WriteFile(c.availablePath(site.Domain), []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if site.Root != "" {
		if err := os.MkdirAll(site.Root, 0755); err != nil {
			return fmt.Errorf("failed to create document root: %w", err)
		}
	}

	return nil
}

// Remove deletes a vhost config
func (c *CaddyDriver) Remove(domain string) error {
	if enabled, _ := c.IsEnabled(domain); enabled {
		if err := c.Disable(domain); err != nil {
			return err
		}
	}

	if err := os.Remove(c.availablePath(domain)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("site %s not found", domain)
		}
		return fmt.Errorf("failed to remove config file: %w", err)
	}

	return nil
}

// Enable activates a vhost by creating a symlink
func (c *CaddyDriver) Enable(domain string) error {
	source := c.availablePath(domain)
	target := c.enabledPath(domain)

	if _, err := os.Stat(source); os.IsNotExist(err) {
		return fmt.Errorf("site %s not found in sites-available", domain)
	}

	if _, err := os.Lstat(target); err == nil {
		return fmt.Errorf("site %s is already enabled", domain)
	}

	if err := os.Symlink(source, target); err != nil {
		return fmt.Errorf("failed to enable site: %w", err)
	}

	return nil
}

// Disable deactivates a vhost by removing the symlink
func (c *CaddyDriver) Disable(domain string) error {
	target := c.enabledPath(domain)

	info, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return fmt.Errorf("site %s is not enabled", domain)
	}
	if err != nil {
		return fmt.Errorf("failed to check site status: %w", err)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("site %s is not a symlink, refusing to remove", domain)
	}

	if err := os.Remove(target); err != nil {
		return fmt.Errorf("failed to disable site: %w", err)
	}

	return nil
}

// List returns all vhost domains from sites-available
func (c *CaddyDriver) List() ([]string, error) {
	entries, err := os.ReadDir(c.paths.Available)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read sites-available: %w", err)
	}

	domains := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, caddyExt) {
			continue
		}
		domains = append(domains, strings.TrimSuffix(name, caddyExt))
	}

	return domains, nil
}

// IsEnabled checks if a vhost is enabled
func (c *CaddyDriver) IsEnabled(domain string) (bool, error) {
	_, err := os.Lstat(c.enabledPath(domain))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check site status: %w", err)
	}
	return true, nil
}

// Test validates the caddy config syntax
func (c *CaddyDriver) Test() error {
	output, err := c.exec.Execute("caddy", "validate", "--config", "/etc/caddy/Caddyfile")
	if err != nil {
		return fmt.Errorf("caddy config validation failed: %s", string(output))
	}
	return nil
}

// Reload reloads caddy to apply changes
func (c *CaddyDriver) Reload() error {
	output, err := c.exec.Execute("systemctl", "reload", "caddy")
	if err != nil {
		output, err = c.exec.Execute("caddy", "reload", "--config", "/etc/caddy/Caddyfile")
		if err != nil {
			return fmt.Errorf("failed to reload caddy: %s", string(output))
		}
	}
	return nil
}
