package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/acme"
	"github.com/deckhand-sh/deckhand/internal/certbot"
	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/dns"
	"github.com/deckhand-sh/deckhand/internal/input"
	"github.com/deckhand-sh/deckhand/internal/output"
	"github.com/deckhand-sh/deckhand/internal/template"
)

// renewThresholdDays is when a certificate counts as due for renewal.
const renewThresholdDays = 30

var (
	certBackend    string
	certAliases    []string
	certDNS        bool
	certWebroot    string
	certStandalone bool
	forceCertOp    bool
)

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Manage TLS certificates",
}

var certIssueCmd = &cobra.Command{
	Use:   "issue <domain>",
	Short: "Issue a certificate",
	Long: `Issue a TLS certificate for a domain.

The native backend speaks ACME directly; the certbot backend shells out to
an installed certbot. Both store artifacts in the letsencrypt live/ layout.

Validation defaults to HTTP-01 through the shared ACME webroot. Pass --dns
to validate over DNS-01 using the configured DNS provider (required for
wildcard names), or --standalone to bind port 80 directly when no proxy is
running yet.

Examples:
  deckhand cert issue example.com --alias www.example.com
  deckhand cert issue example.com --dns
  deckhand cert issue example.com --backend certbot --standalone`,
	Args: cobra.ExactArgs(1),
	RunE: runCertIssue,
}

var certRenewCmd = &cobra.Command{
	Use:   "renew [domain]",
	Short: "Renew certificates",
	Long: `Renew a certificate, or all certificates when no domain is given.

Certificates are only reissued within the renewal window unless --force.

Examples:
  deckhand cert renew
  deckhand cert renew example.com --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCertRenew,
}

var certStatusCmd = &cobra.Command{
	Use:   "status [domain]",
	Short: "Show certificate expiry",
	Long: `Show expiry information for issued certificates.

Examples:
  deckhand cert status
  deckhand cert status example.com --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCertStatus,
}

var certDeleteCmd = &cobra.Command{
	Use:   "delete <domain>",
	Short: "Delete a certificate",
	Args:  cobra.ExactArgs(1),
	RunE:  runCertDelete,
}

func init() {
	certIssueCmd.Flags().StringVar(&certBackend, "backend", "", "Issuance backend (native, certbot); defaults to config")
	certIssueCmd.Flags().StringSliceVar(&certAliases, "alias", nil, "Additional names on the certificate")
	certIssueCmd.Flags().BoolVar(&certDNS, "dns", false, "Validate via DNS-01 using the configured provider")
	certIssueCmd.Flags().StringVar(&certWebroot, "webroot", "", "Webroot for HTTP-01 validation (defaults to the shared ACME webroot)")
	certIssueCmd.Flags().BoolVar(&certStandalone, "standalone", false, "Bind port 80 directly for HTTP-01 (no proxy running)")

	certRenewCmd.Flags().StringVar(&certBackend, "backend", "", "Issuance backend (native, certbot); defaults to config")
	certRenewCmd.Flags().BoolVar(&certDNS, "dns", false, "Revalidate via DNS-01 (required for certificates issued with --dns)")
	certRenewCmd.Flags().BoolVarP(&forceCertOp, "force", "f", false, "Renew even outside the renewal window")

	certDeleteCmd.Flags().BoolVarP(&forceCertOp, "force", "f", false, "Delete without confirmation")

	certCmd.AddCommand(certIssueCmd)
	certCmd.AddCommand(certRenewCmd)
	certCmd.AddCommand(certStatusCmd)
	certCmd.AddCommand(certDeleteCmd)
	rootCmd.AddCommand(certCmd)
}

// resolveBackend picks the backend from the flag or config.
func resolveBackend(cfg *config.Config) string {
	if certBackend != "" {
		return certBackend
	}
	if cfg.ACME.Backend != "" {
		return cfg.ACME.Backend
	}
	return config.BackendNative
}

func runCertIssue(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := validateDomain(domain); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend := resolveBackend(cfg)
	if backend != config.BackendNative && backend != config.BackendCertbot {
		return fmt.Errorf("invalid backend: %s (valid: native, certbot)", backend)
	}
	if cfg.ACME.Email == "" {
		return fmt.Errorf("acme email not configured (set DECKHAND_ACME_EMAIL or acme.email in config)")
	}
	if certDNS && certStandalone {
		return fmt.Errorf("--dns and --standalone are mutually exclusive")
	}

	domains := append([]string{domain}, certAliases...)

	if _, known := cfg.Sites[domain]; !known {
		output.Warn("%s is not a configured site; issuing anyway (add it with: deckhand site add %s)", domain, domain)
	}

	if dryRun {
		mode := "http-01 webroot"
		if certDNS {
			mode = "dns-01"
		} else if certStandalone {
			mode = "http-01 standalone"
		}
		return outputDryRun(&DryRunResult{
			Domain: domain,
			Operations: []DryRunOperation{
				{Action: "issue_certificate", Target: domain, Details: fmt.Sprintf("Backend %s, validation %s", backend, mode)},
				{Action: "write_file", Target: filepath.Join(certLiveDir(), domain, "fullchain.pem")},
				{Action: "write_file", Target: filepath.Join(certLiveDir(), domain, "privkey.pem")},
			},
		})
	}

	if err := requireRoot(); err != nil {
		return err
	}

	if backend == config.BackendCertbot {
		return issueViaCertbot(cfg, domains)
	}
	return issueViaNative(cfg, domains)
}

func issueViaCertbot(cfg *config.Config, domains []string) error {
	if !certbot.IsInstalled() {
		return fmt.Errorf("certbot is not installed (use --backend native or install certbot)")
	}
	if certDNS {
		return fmt.Errorf("dns-01 validation requires the native backend")
	}

	var cert *certbot.Cert
	var err error
	if certStandalone {
		output.Info("Issuing certificate via certbot (standalone)...")
		cert, err = certbot.IssueStandalone(domains, cfg.ACME.Email)
	} else {
		webroot := certWebroot
		if webroot == "" {
			webroot = template.ACMEWebroot()
		}
		output.Info("Issuing certificate via certbot (webroot %s)...", webroot)
		cert, err = certbot.Issue(domains, cfg.ACME.Email, webroot)
	}
	if err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{
			"success":   true,
			"domain":    cert.Domain,
			"cert_path": cert.CertPath,
			"key_path":  cert.KeyPath,
		},
		"Certificate for %s issued", cert.Domain,
	)
}

func issueViaNative(cfg *config.Config, domains []string) error {
	issuer, err := deps.IssuerFactory.Create(cfg.ACME)
	if err != nil {
		return err
	}

	req := acme.Request{Domains: domains}
	switch {
	case certDNS:
		provider, err := deps.DNSFactory.Create(cfg.DNS)
		if err != nil {
			return fmt.Errorf("dns-01 validation needs a configured DNS provider: %w", err)
		}
		req.DNSProvider = dns.NewChallengeProvider(provider)
		output.Info("Issuing certificate (dns-01)...")
	case certStandalone:
		output.Info("Issuing certificate (http-01 standalone)...")
	default:
		req.Webroot = certWebroot
		if req.Webroot == "" {
			req.Webroot = template.ACMEWebroot()
		}
		output.Info("Issuing certificate (http-01 webroot %s)...", req.Webroot)
	}

	result, err := issuer.Issue(context.Background(), req)
	if err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{
			"success":   true,
			"domain":    result.Domain,
			"cert_path": result.CertPath,
			"key_path":  result.KeyPath,
		},
		"Certificate for %s issued", result.Domain,
	)
}

// certStatusItem is one certificate in the status listing
type certStatusItem struct {
	Domain        string    `json:"domain"`
	NotAfter      time.Time `json:"not_after"`
	DaysRemaining int       `json:"days_remaining"`
	NeedsRenewal  bool      `json:"needs_renewal"`
}

// liveCertificates inspects every certificate under the live directory
func liveCertificates() ([]certStatusItem, error) {
	liveDir := certLiveDir()
	entries, err := os.ReadDir(liveDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", liveDir, err)
	}

	now := time.Now()
	var items []certStatusItem
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := acme.Inspect(filepath.Join(liveDir, entry.Name(), "fullchain.pem"))
		if err != nil {
			continue
		}
		days := info.DaysRemaining(now)
		items = append(items, certStatusItem{
			Domain:        entry.Name(),
			NotAfter:      info.NotAfter,
			DaysRemaining: days,
			NeedsRenewal:  days < renewThresholdDays,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Domain < items[j].Domain })
	return items, nil
}

func runCertStatus(cmd *cobra.Command, args []string) error {
	items, err := liveCertificates()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		domain := args[0]
		for _, item := range items {
			if item.Domain == domain {
				items = []certStatusItem{item}
				break
			}
		}
		if len(items) != 1 || items[0].Domain != domain {
			return fmt.Errorf("no certificate found for %s", domain)
		}
	}

	if jsonOutput {
		return output.JSON(items)
	}

	if len(items) == 0 {
		output.Info("No certificates found")
		return nil
	}

	headers := []string{"DOMAIN", "EXPIRES", "DAYS LEFT", "STATUS"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		status := "ok"
		if item.DaysRemaining < 0 {
			status = "EXPIRED"
		} else if item.NeedsRenewal {
			status = "renew soon"
		}
		rows = append(rows, []string{
			item.Domain,
			item.NotAfter.Format("2006-01-02"),
			fmt.Sprintf("%d", item.DaysRemaining),
			status,
		})
	}
	output.Table(headers, rows)

	for _, item := range items {
		if item.NeedsRenewal {
			output.Warn("%s expires in %d days; run: deckhand cert renew", item.Domain, item.DaysRemaining)
			break
		}
	}
	return nil
}

func runCertRenew(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend := resolveBackend(cfg)

	var domain string
	if len(args) == 1 {
		domain = args[0]
	}

	if dryRun {
		target := domain
		if target == "" {
			target = "all certificates"
		}
		return outputDryRun(&DryRunResult{
			Domain: domain,
			Operations: []DryRunOperation{
				{Action: "renew_certificate", Target: target, Details: fmt.Sprintf("Backend %s", backend)},
			},
		})
	}

	if err := requireRoot(); err != nil {
		return err
	}

	if backend == config.BackendCertbot {
		if !certbot.IsInstalled() {
			return fmt.Errorf("certbot is not installed")
		}
		output.Info("Renewing via certbot...")
		if domain != "" {
			err = certbot.Renew(domain)
		} else {
			err = certbot.RenewAll()
		}
		if err != nil {
			return err
		}
		return outputResult(map[string]interface{}{"success": true, "renewed": true}, "Renewal complete")
	}

	return renewNative(cfg, domain)
}

// renewNative reissues certificates inside the renewal window. Certificates
// issued with --dns must renew with --dns too; HTTP-01 cannot validate them.
func renewNative(cfg *config.Config, domain string) error {
	items, err := liveCertificates()
	if err != nil {
		return err
	}

	issuer, err := deps.IssuerFactory.Create(cfg.ACME)
	if err != nil {
		return err
	}

	var dnsChallenge *dns.ChallengeProvider
	if certDNS {
		provider, err := deps.DNSFactory.Create(cfg.DNS)
		if err != nil {
			return fmt.Errorf("dns-01 renewal needs a configured DNS provider: %w", err)
		}
		dnsChallenge = dns.NewChallengeProvider(provider)
	}

	matched := false
	renewed := make([]string, 0)
	for _, item := range items {
		if domain != "" && item.Domain != domain {
			continue
		}
		matched = true
		if !item.NeedsRenewal && !forceCertOp {
			output.Info("%s not due for renewal (%d days left)", item.Domain, item.DaysRemaining)
			continue
		}

		output.Info("Renewing %s...", item.Domain)
		req := acme.Request{Domains: []string{item.Domain}}
		if certDNS {
			req.DNSProvider = dnsChallenge
		} else {
			req.Webroot = template.ACMEWebroot()
		}
		if _, err := issuer.Issue(context.Background(), req); err != nil {
			output.Error("Failed to renew %s: %v", item.Domain, err)
			continue
		}
		renewed = append(renewed, item.Domain)
	}

	if domain != "" && !matched {
		return fmt.Errorf("no certificate found for %s", domain)
	}

	return outputResult(
		map[string]interface{}{"success": true, "renewed": renewed},
		"Renewed %d certificate(s)", len(renewed),
	)
}

func runCertDelete(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := validateDomain(domain); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	liveDir := filepath.Join(certLiveDir(), domain)

	if dryRun {
		return outputDryRun(&DryRunResult{
			Domain: domain,
			Operations: []DryRunOperation{
				{Action: "delete_directory", Target: liveDir, Details: "Certificate artifacts"},
			},
		})
	}

	if err := requireRoot(); err != nil {
		return err
	}

	if !forceCertOp {
		output.Print("Delete certificate for '%s'? Sites using it will fail to load. [y/N]: ", domain)
		yes, err := input.Confirm(deps.StdinReader, false)
		if err != nil {
			return err
		}
		if !yes {
			output.Info("Deletion cancelled")
			return nil
		}
	}

	if resolveBackend(cfg) == config.BackendCertbot && certbot.IsInstalled() {
		if err := certbot.Delete(domain); err != nil {
			return err
		}
	} else {
		if _, err := os.Stat(liveDir); os.IsNotExist(err) {
			return fmt.Errorf("no certificate found for %s", domain)
		}
		if err := os.RemoveAll(liveDir); err != nil {
			return fmt.Errorf("failed to delete certificate: %w", err)
		}
	}

	return outputResult(newSuccessResult(domain, "cert_deleted"), "Certificate for %s deleted", domain)
}
