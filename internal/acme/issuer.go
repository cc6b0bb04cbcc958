package acme

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/http01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/providers/http/webroot"
	"github.com/go-acme/lego/v4/registration"

	"github.com/deckhand-sh/deckhand/internal/logger"
)

// Config holds issuer settings.
type Config struct {
	Email        string
	DirectoryURL string             // defaults to Let's Encrypt production
	StateDir     string             // account key and issued certificates live here
	KeyType      certcrypto.KeyType // defaults to EC256
}

// Request describes a single issuance. Exactly one challenge mode applies:
// DNSProvider when set, otherwise Webroot when non-empty, otherwise a
// standalone HTTP-01 listener on port 80.
type Request struct {
	Domains     []string
	Webroot     string
	DNSProvider challenge.Provider
}

// Result captures the file paths of the issued artifacts.
type Result struct {
	Domain   string
	CertPath string
	KeyPath  string
}

// Issuer obtains certificates from an ACME CA and stores them on disk in
// the letsencrypt live/<domain>/ layout so proxy templates work with either
// backend.
type Issuer struct {
	cfg       Config
	newClient clientFactory
}

// NewIssuer constructs an Issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	cfg.Email = strings.TrimSpace(cfg.Email)
	if cfg.Email == "" {
		return nil, fmt.Errorf("acme account email is required")
	}
	if cfg.StateDir == "" {
		return nil, fmt.Errorf("acme state directory is required")
	}
	if cfg.DirectoryURL == "" {
		cfg.DirectoryURL = lego.LEDirectoryProduction
	}
	if cfg.KeyType == "" {
		cfg.KeyType = certcrypto.EC256
	}

	return &Issuer{
		cfg:       cfg,
		newClient: defaultClientFactory,
	}, nil
}

// Issue obtains a certificate for the requested domains and writes the
// artifacts to <StateDir>/live/<first domain>/.
func (i *Issuer) Issue(ctx context.Context, req Request) (*Result, error) {
	if len(req.Domains) == 0 {
		return nil, fmt.Errorf("at least one domain is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := i.loadOrCreateAccountKey()
	if err != nil {
		return nil, err
	}

	user := &account{email: i.cfg.Email, key: key}

	legoCfg := lego.NewConfig(user)
	legoCfg.CADirURL = i.cfg.DirectoryURL
	legoCfg.Certificate.KeyType = i.cfg.KeyType

	client, err := i.newClient(legoCfg)
	if err != nil {
		return nil, fmt.Errorf("create acme client: %w", err)
	}

	if err := i.setChallenge(client, req); err != nil {
		return nil, err
	}

	reg, err := client.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
	if err != nil {
		return nil, fmt.Errorf("register account: %w", err)
	}
	user.registration = reg

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.InfoKV("obtaining certificate", "domains", strings.Join(req.Domains, ","))
	certRes, err := client.Obtain(certificate.ObtainRequest{
		Domains: req.Domains,
		Bundle:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("obtain certificate: %w", err)
	}

	return i.writeArtifacts(req.Domains[0], certRes)
}

// setChallenge wires the challenge provider for the request.
func (i *Issuer) setChallenge(client acmeClient, req Request) error {
	if req.DNSProvider != nil {
		if err := client.SetDNS01Provider(req.DNSProvider); err != nil {
			return fmt.Errorf("configure dns-01 provider: %w", err)
		}
		return nil
	}

	if req.Webroot != "" {
		provider, err := webroot.NewHTTPProvider(req.Webroot)
		if err != nil {
			return fmt.Errorf("configure webroot provider: %w", err)
		}
		if err := client.SetHTTP01Provider(provider); err != nil {
			return fmt.Errorf("configure http-01 provider: %w", err)
		}
		return nil
	}

	// Standalone: bind port 80 ourselves. Only valid before the proxy owns it.
	if err := client.SetHTTP01Provider(http01.NewProviderServer("", "80")); err != nil {
		return fmt.Errorf("configure http-01 provider: %w", err)
	}
	return nil
}

// LivePath returns the artifact directory for a domain.
func (i *Issuer) LivePath(domain string) string {
	return filepath.Join(i.cfg.StateDir, "live", domain)
}

func (i *Issuer) writeArtifacts(domain string, certRes *certificate.Resource) (*Result, error) {
	if certRes == nil {
		return nil, fmt.Errorf("certificate resource is nil")
	}
	if len(certRes.Certificate) == 0 {
		return nil, fmt.Errorf("empty certificate payload received from ACME server")
	}
	if len(certRes.PrivateKey) == 0 {
		return nil, fmt.Errorf("empty private key received from ACME server")
	}

	dir := i.LivePath(domain)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ensure live directory: %w", err)
	}

	certPath := filepath.Join(dir, "fullchain.pem")
	keyPath := filepath.Join(dir, "privkey.pem")

	if err := os.WriteFile(keyPath, certRes.PrivateKey, 0600); err != nil {
		return nil, fmt.Errorf("write private key: %w", err)
	}
	if err := os.WriteFile(certPath, certRes.Certificate, 0644); err != nil {
		return nil, fmt.Errorf("write certificate: %w", err)
	}

	return &Result{
		Domain:   domain,
		CertPath: certPath,
		KeyPath:  keyPath,
	}, nil
}

// clientFactory builds the ACME client; replaced in tests.
type clientFactory func(*lego.Config) (acmeClient, error)

// acmeClient is the subset of lego.Client the issuer needs.
type acmeClient interface {
	Register(options registration.RegisterOptions) (*registration.Resource, error)
	SetHTTP01Provider(provider challenge.Provider) error
	SetDNS01Provider(provider challenge.Provider) error
	Obtain(request certificate.ObtainRequest) (*certificate.Resource, error)
}

func defaultClientFactory(cfg *lego.Config) (acmeClient, error) {
	client, err := lego.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &legoAdapter{client: client}, nil
}

type legoAdapter struct {
	client *lego.Client
}

func (l *legoAdapter) Register(options registration.RegisterOptions) (*registration.Resource, error) {
	return l.client.Registration.Register(options)
}

func (l *legoAdapter) SetHTTP01Provider(provider challenge.Provider) error {
	return l.client.Challenge.SetHTTP01Provider(provider)
}

func (l *legoAdapter) SetDNS01Provider(provider challenge.Provider) error {
	return l.client.Challenge.SetDNS01Provider(provider)
}

func (l *legoAdapter) Obtain(request certificate.ObtainRequest) (*certificate.Resource, error) {
	return l.client.Certificate.Obtain(request)
}
