package cli

import (
	"context"

	"github.com/deckhand-sh/deckhand/internal/acme"
	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/dns"
	"github.com/deckhand-sh/deckhand/internal/errors"
	"github.com/deckhand-sh/deckhand/internal/executor"
	"github.com/deckhand-sh/deckhand/internal/input"
	"github.com/deckhand-sh/deckhand/internal/platform"
	"github.com/deckhand-sh/deckhand/internal/proxy"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	SaveCalls int
}

func (m *MockConfigLoader) Load() (*config.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	return nil
}

// MockPlatformDetector is a test double for PlatformDetector
type MockPlatformDetector struct {
	Paths *platform.Paths
	Err   error
}

func (m *MockPlatformDetector) DetectPaths() (*platform.Paths, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Paths != nil {
		return m.Paths, nil
	}
	// Return default mock paths
	return &platform.Paths{
		Nginx: platform.PathConfig{
			Available: "/etc/nginx/sites-available",
			Enabled:   "/etc/nginx/sites-enabled",
		},
		Caddy: platform.PathConfig{
			Available: "/etc/caddy/sites-available",
			Enabled:   "/etc/caddy/sites-enabled",
		},
		CertLiveDir: "/etc/letsencrypt/live",
		Fail2banDir: "/etc/fail2ban/jail.d",
	}, nil
}

// MockDriverFactory is a test double for DriverFactory
type MockDriverFactory struct {
	Driver proxy.Driver
	Err    error
}

func (m *MockDriverFactory) Create(name string, paths proxy.Paths) (proxy.Driver, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Driver != nil {
		return m.Driver, nil
	}
	// Return a default mock driver if none provided
	return proxy.NewMockDriver(name, paths.Available, paths.Enabled), nil
}

// MockDNSFactory is a test double for DNSProviderFactory
type MockDNSFactory struct {
	Provider dns.Provider
	Err      error
}

func (m *MockDNSFactory) Create(cfg config.DNSConfig) (dns.Provider, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Provider != nil {
		return m.Provider, nil
	}
	return dns.NewMockProvider("example.com"), nil
}

// MockIssuer is a test double for CertIssuer
type MockIssuer struct {
	IssueCalls []acme.Request
	Result     *acme.Result
	Err        error
	LiveDir    string
}

func (m *MockIssuer) Issue(ctx context.Context, req acme.Request) (*acme.Result, error) {
	m.IssueCalls = append(m.IssueCalls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	domain := req.Domains[0]
	return &acme.Result{
		Domain:   domain,
		CertPath: m.LivePath(domain) + "/fullchain.pem",
		KeyPath:  m.LivePath(domain) + "/privkey.pem",
	}, nil
}

func (m *MockIssuer) LivePath(domain string) string {
	dir := m.LiveDir
	if dir == "" {
		dir = "/etc/letsencrypt/live"
	}
	return dir + "/" + domain
}

// MockIssuerFactory is a test double for IssuerFactory
type MockIssuerFactory struct {
	Issuer CertIssuer
	Err    error
}

func (m *MockIssuerFactory) Create(cfg config.ACMEConfig) (CertIssuer, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Issuer != nil {
		return m.Issuer, nil
	}
	return &MockIssuer{}, nil
}

// MockRootChecker is a test double for RootChecker
type MockRootChecker struct {
	IsRoot bool
	Calls  int
}

func (m *MockRootChecker) RequireRoot() error {
	m.Calls++
	if !m.IsRoot {
		return errors.ErrRootRequired
	}
	return nil
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:     &MockConfigLoader{Cfg: config.New()},
			PlatformDetector: &MockPlatformDetector{},
			DriverFactory:    &MockDriverFactory{},
			DNSFactory:       &MockDNSFactory{},
			IssuerFactory:    &MockIssuerFactory{},
			RootChecker:      &MockRootChecker{IsRoot: true},
			StdinReader:      input.NewStringReader("y\n"),
			Executor:         &executor.MockExecutor{},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithDriver sets the proxy driver for the mock
func (b *MockDependenciesBuilder) WithDriver(drv proxy.Driver) *MockDependenciesBuilder {
	b.deps.DriverFactory = &MockDriverFactory{Driver: drv}
	return b
}

// WithDNSProvider sets the DNS provider for the mock
func (b *MockDependenciesBuilder) WithDNSProvider(p dns.Provider) *MockDependenciesBuilder {
	b.deps.DNSFactory = &MockDNSFactory{Provider: p}
	return b
}

// WithIssuer sets the certificate issuer for the mock
func (b *MockDependenciesBuilder) WithIssuer(i CertIssuer) *MockDependenciesBuilder {
	b.deps.IssuerFactory = &MockIssuerFactory{Issuer: i}
	return b
}

// WithRootAccess sets whether root access is available
func (b *MockDependenciesBuilder) WithRootAccess(isRoot bool) *MockDependenciesBuilder {
	b.deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
	return b
}

// WithStdinInput sets the stdin input for the mock
func (b *MockDependenciesBuilder) WithStdinInput(inputs ...string) *MockDependenciesBuilder {
	b.deps.StdinReader = input.NewStringReader(inputs...)
	return b
}

// WithExecutor sets the command executor for the mock
func (b *MockDependenciesBuilder) WithExecutor(exec executor.CommandExecutor) *MockDependenciesBuilder {
	b.deps.Executor = exec
	return b
}

// WithPlatformPaths sets custom platform paths
func (b *MockDependenciesBuilder) WithPlatformPaths(paths *platform.Paths) *MockDependenciesBuilder {
	b.deps.PlatformDetector = &MockPlatformDetector{Paths: paths}
	return b
}

// WithPlatformError sets an error for platform detection
func (b *MockDependenciesBuilder) WithPlatformError(err error) *MockDependenciesBuilder {
	b.deps.PlatformDetector = &MockPlatformDetector{Err: err}
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}
