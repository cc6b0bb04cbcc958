package proxy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/executor"
)

// NginxDriver implements the Driver interface for Nginx
type NginxDriver struct {
	paths Paths
	exec  executor.CommandExecutor
}

// NewNginx creates a new Nginx driver
func NewNginx(paths Paths, exec executor.CommandExecutor) *NginxDriver {
	if exec == nil {
		exec = executor.NewSystemExecutor()
	}
	return &NginxDriver{paths: paths, exec: exec}
}

// Name returns the driver name
func (n *NginxDriver) Name() string {
	return "nginx"
}

// Paths returns the config paths
func (n *NginxDriver) Paths() Paths {
	return n.paths
}

// Add writes a rendered vhost config to sites-available
func (n *NginxDriver) Add(site *config.Site, configContent string) error {
	if err := os.MkdirAll(n.paths.Available, 0755); err != nil {
		return fmt.Errorf("failed to create sites-available directory: %w", err)
	}
	if err := os.MkdirAll(n.paths.Enabled, 0755); err != nil {
		return fmt.Errorf("failed to create sites-enabled directory: %w", err)
	}

	configPath := filepath.Join(n.paths.Available, site.Domain)
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Create document root if specified and doesn't exist
	if site.Root != "" {
		if err := os.MkdirAll(site.Root, 0755); err != nil {
			return fmt.Errorf("failed to create document root: %w", err)
		}
	}

	return nil
}

// Remove deletes a vhost config
func (n *NginxDriver) Remove(domain string) error {
	if enabled, _ := n.IsEnabled(domain); enabled {
		if err := n.Disable(domain); err != nil {
			return err
		}
	}

	configPath := filepath.Join(n.paths.Available, domain)
	if err := os.Remove(configPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("site %s not found", domain)
		}
		return fmt.Errorf("failed to remove config file: %w", err)
	}

	return nil
}

// Enable activates a vhost by creating a symlink
func (n *NginxDriver) Enable(domain string) error {
	source := filepath.Join(n.paths.Available, domain)
	target := filepath.Join(n.paths.Enabled, domain)

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
func (n *NginxDriver) Disable(domain string) error {
	target := filepath.Join(n.paths.Enabled, domain)

	info, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return fmt.Errorf("site %s is not enabled", domain)
	}
	if err != nil {
		return fmt.Errorf("failed to check site status: %w", err)
	}

	// Never delete a real file, only the activation symlink
	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("site %s is not a symlink, refusing to remove", domain)
	}

	if err := os.Remove(target); err != nil {
		return fmt.Errorf("failed to disable site: %w", err)
	}

	return nil
}

// List returns all vhost domains from sites-available
func (n *NginxDriver) List() ([]string, error) {
	entries, err := os.ReadDir(n.paths.Available)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read sites-available: %w", err)
	}

	domains := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			domains = append(domains, entry.Name())
		}
	}

	return domains, nil
}

// IsEnabled checks if a vhost is enabled
func (n *NginxDriver) IsEnabled(domain string) (bool, error) {
	target := filepath.Join(n.paths.Enabled, domain)
	_, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check site status: %w", err)
	}
	return true, nil
}

// Test validates the nginx config syntax
func (n *NginxDriver) Test() error {
	output, err := n.exec.Execute("nginx", "-t")
	if err != nil {
		return fmt.Errorf("nginx config test failed: %s", string(output))
	}
	return nil
}

// Reload reloads nginx to apply changes without dropping connections
func (n *NginxDriver) Reload() error {
	output, err := n.exec.Execute("systemctl", "reload", "nginx")
	if err != nil {
		// Try nginx -s reload as fallback for non-systemd hosts
		output, err = n.exec.Execute("nginx", "-s", "reload")
		if err != nil {
			return fmt.Errorf("failed to reload nginx: %s", string(output))
		}
	}
	return nil
}
