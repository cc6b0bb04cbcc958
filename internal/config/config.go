package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
// Values from the YAML file can be overridden through DECKHAND_* environment
// variables; secrets (the DNS API token) are environment-only.
type Config struct {
	Driver string           `yaml:"driver" env:"DECKHAND_DRIVER"`
	ACME   ACMEConfig       `yaml:"acme"`
	DNS    DNSConfig        `yaml:"dns"`
	Sites  map[string]*Site `yaml:"sites"`
}

// ACMEConfig holds certificate issuance settings.
type ACMEConfig struct {
	Email        string `yaml:"email" env:"DECKHAND_ACME_EMAIL"`
	DirectoryURL string `yaml:"directory_url,omitempty" env:"DECKHAND_ACME_DIRECTORY"`
	Backend      string `yaml:"backend,omitempty" env:"DECKHAND_ACME_BACKEND"` // native or certbot
	StateDir     string `yaml:"state_dir,omitempty" env:"DECKHAND_ACME_STATE_DIR"`
}

// DNSConfig holds DNS provider settings. The token never touches the YAML
// file; it is read from the environment on every run.
type DNSConfig struct {
	APIURL string `yaml:"api_url,omitempty" env:"DECKHAND_DNS_API"`
	Zone   string `yaml:"zone,omitempty" env:"DECKHAND_DNS_ZONE"`
	Token  string `yaml:"-" env:"DECKHAND_DNS_TOKEN"`
	TTL    int    `yaml:"ttl,omitempty" env:"DECKHAND_DNS_TTL"`
}

// Backend names for ACMEConfig.Backend.
const (
	BackendNative  = "native"
	BackendCertbot = "certbot"
)

// configDir is the default config directory
const configDir = ".config/deckhand"
const configFile = "config.yaml"

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Driver: "nginx",
		ACME: ACMEConfig{
			Backend: BackendNative,
		},
		DNS: DNSConfig{
			TTL: 300,
		},
		Sites: make(map[string]*Site),
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// Path returns the config file path
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config from disk and applies environment overrides.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path. A missing file yields the
// default config so first runs work without setup.
func LoadFrom(path string) (*Config, error) {
	cfg := New()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if cfg.Sites == nil {
		cfg.Sites = make(map[string]*Site)
	}
	if cfg.ACME.Backend == "" {
		cfg.ACME.Backend = BackendNative
	}
	if cfg.DNS.TTL <= 0 {
		cfg.DNS.TTL = 300
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// AddSite adds a site to the config
func (c *Config) AddSite(site *Site) error {
	if _, exists := c.Sites[site.Domain]; exists {
		return fmt.Errorf("site %s already exists", site.Domain)
	}
	c.Sites[site.Domain] = site
	return nil
}

// GetSite returns a site by domain
func (c *Config) GetSite(domain string) (*Site, error) {
	site, exists := c.Sites[domain]
	if !exists {
		return nil, fmt.Errorf("site %s not found", domain)
	}
	return site, nil
}

// RemoveSite removes a site from the config
func (c *Config) RemoveSite(domain string) error {
	if _, exists := c.Sites[domain]; !exists {
		return fmt.Errorf("site %s not found", domain)
	}
	delete(c.Sites, domain)
	return nil
}

// ListSites returns all sites
func (c *Config) ListSites() []*Site {
	sites := make([]*Site, 0, len(c.Sites))
	for _, s := range c.Sites {
		sites = append(sites, s)
	}
	return sites
}
