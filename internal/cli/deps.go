package cli

import (
	"context"
	"os"

	"github.com/deckhand-sh/deckhand/internal/acme"
	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/dns"
	"github.com/deckhand-sh/deckhand/internal/errors"
	"github.com/deckhand-sh/deckhand/internal/executor"
	"github.com/deckhand-sh/deckhand/internal/input"
	"github.com/deckhand-sh/deckhand/internal/platform"
	"github.com/deckhand-sh/deckhand/internal/proxy"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader     ConfigLoader
	PlatformDetector PlatformDetector
	DriverFactory    DriverFactory
	DNSFactory       DNSProviderFactory
	IssuerFactory    IssuerFactory
	RootChecker      RootChecker
	StdinReader      input.Reader
	Executor         executor.CommandExecutor
}

// ConfigLoader handles configuration loading and saving
type ConfigLoader interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
}

// PlatformDetector handles platform path detection
type PlatformDetector interface {
	DetectPaths() (*platform.Paths, error)
}

// DriverFactory creates proxy driver instances
type DriverFactory interface {
	Create(name string, paths proxy.Paths) (proxy.Driver, error)
}

// DNSProviderFactory creates the zone record provider
type DNSProviderFactory interface {
	Create(cfg config.DNSConfig) (dns.Provider, error)
}

// CertIssuer is the slice of the ACME issuer the CLI uses
type CertIssuer interface {
	Issue(ctx context.Context, req acme.Request) (*acme.Result, error)
	LivePath(domain string) string
}

// IssuerFactory creates certificate issuers
type IssuerFactory interface {
	Create(cfg config.ACMEConfig) (CertIssuer, error)
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:     &realConfigLoader{},
	PlatformDetector: &realPlatformDetector{},
	DriverFactory:    &realDriverFactory{},
	DNSFactory:       &realDNSFactory{},
	IssuerFactory:    &realIssuerFactory{},
	RootChecker:      &realRootChecker{},
	StdinReader:      input.NewStdinReader(),
	Executor:         executor.NewSystemExecutor(),
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to the concrete packages

type realConfigLoader struct{}

func (r *realConfigLoader) Load() (*config.Config, error) {
	return config.Load()
}

func (r *realConfigLoader) Save(cfg *config.Config) error {
	return cfg.Save()
}

type realPlatformDetector struct{}

func (r *realPlatformDetector) DetectPaths() (*platform.Paths, error) {
	return platform.Detect()
}

type realDriverFactory struct{}

func (r *realDriverFactory) Create(name string, paths proxy.Paths) (proxy.Driver, error) {
	return proxy.New(name, paths, deps.Executor)
}

type realDNSFactory struct{}

func (r *realDNSFactory) Create(cfg config.DNSConfig) (dns.Provider, error) {
	return dns.NewRESTProvider(cfg.APIURL, cfg.Zone, cfg.Token)
}

type realIssuerFactory struct{}

func (r *realIssuerFactory) Create(cfg config.ACMEConfig) (CertIssuer, error) {
	stateDir := cfg.StateDir
	if stateDir == "" {
		// same layout certbot uses, so either backend feeds the proxy templates
		stateDir = "/etc/letsencrypt"
	}
	return acme.NewIssuer(acme.Config{
		Email:        cfg.Email,
		DirectoryURL: cfg.DirectoryURL,
		StateDir:     stateDir,
	})
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return errors.ErrRootRequired
	}
	return nil
}

// requireRoot enforces the root check unless running in dry-run mode.
func requireRoot() error {
	if dryRun {
		return nil
	}
	return deps.RootChecker.RequireRoot()
}
