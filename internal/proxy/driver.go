package proxy

import (
	"fmt"

	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/executor"
)

// Driver is the interface that all reverse-proxy drivers must implement
type Driver interface {
	// Name returns the driver name (nginx, caddy)
	Name() string

	// Add writes a rendered vhost config
	Add(site *config.Site, configContent string) error

	// Remove deletes a vhost config, disabling it first if needed
	Remove(domain string) error

	// Enable activates a vhost
	Enable(domain string) error

	// Disable deactivates a vhost
	Disable(domain string) error

	// List returns all vhost domains known to the proxy
	List() ([]string, error)

	// IsEnabled checks if a vhost is enabled
	IsEnabled(domain string) (bool, error)

	// Test validates the proxy config syntax
	Test() error

	// Reload applies config changes without dropping connections
	Reload() error

	// Paths returns the driver's config paths
	Paths() Paths
}

// Paths contains the proxy config directory paths
type Paths struct {
	Available string // config available directory
	Enabled   string // config enabled directory
}

// New creates a driver by name with the given paths and executor.
func New(name string, paths Paths, exec executor.CommandExecutor) (Driver, error) {
	switch name {
	case "nginx":
		return NewNginx(paths, exec), nil
	case "caddy":
		return NewCaddy(paths, exec), nil
	default:
		return nil, fmt.Errorf("unknown driver: %s (supported: nginx, caddy)", name)
	}
}

// Supported returns the names of all available drivers.
func Supported() []string {
	return []string{"nginx", "caddy"}
}
