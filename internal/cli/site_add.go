package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/output"
	"github.com/deckhand-sh/deckhand/internal/template"
)

var (
	siteType     string
	siteRoot     string
	siteUpstream string
	siteAliases  []string
	siteRedirect string
	withTLS      bool
	noReload     bool
)

var siteAddCmd = &cobra.Command{
	Use:   "add <domain>",
	Short: "Add a new site",
	Long: `Add a new reverse proxy site configuration.

Examples:
  deckhand site add example.com --type static --root /var/www/html
  deckhand site add app.example.com --type proxy --upstream 127.0.0.1:3000
  deckhand site add www.example.com --type redirect --to https://example.com
  deckhand site add example.com --type static --root /var/www/html --alias www.example.com --tls`,
	Args: cobra.ExactArgs(1),
	RunE: runSiteAdd,
}

func init() {
	siteAddCmd.Flags().StringVarP(&siteType, "type", "t", "static", "Site type (static, proxy, redirect)")
	siteAddCmd.Flags().StringVarP(&siteRoot, "root", "r", "", "Document root path")
	siteAddCmd.Flags().StringVarP(&siteUpstream, "upstream", "u", "", "Upstream target (for proxy type)")
	siteAddCmd.Flags().StringSliceVar(&siteAliases, "alias", nil, "Additional server names")
	siteAddCmd.Flags().StringVar(&siteRedirect, "to", "", "Redirect target URL (for redirect type)")
	siteAddCmd.Flags().BoolVar(&withTLS, "tls", false, "Serve over TLS (certificate must exist; see cert issue)")
	siteAddCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload the proxy")

	siteCmd.AddCommand(siteAddCmd)
}

func runSiteAdd(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := validateDomain(domain); err != nil {
		return err
	}
	for _, alias := range siteAliases {
		if err := validateDomain(alias); err != nil {
			return fmt.Errorf("invalid alias %s: %w", alias, err)
		}
	}
	if !config.IsValidType(siteType) {
		return fmt.Errorf("invalid type: %s. Valid types: %s", siteType, strings.Join(config.ValidTypes(), ", "))
	}
	if err := validateSiteAddOptions(); err != nil {
		return err
	}

	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	if _, exists := cfg.Sites[domain]; exists {
		return fmt.Errorf("site %s already exists", domain)
	}

	site := &config.Site{
		Domain:     domain,
		Type:       siteType,
		Aliases:    siteAliases,
		Root:       siteRoot,
		Upstream:   normalizeUpstream(siteUpstream),
		RedirectTo: siteRedirect,
		TLS:        withTLS,
		Enabled:    true,
		CreatedAt:  time.Now(),
	}
	if site.TLS {
		live := filepath.Join(certLiveDir(), domain)
		site.TLSCert = filepath.Join(live, "fullchain.pem")
		site.TLSKey = filepath.Join(live, "privkey.pem")
	}

	configContent, err := template.Render(drv.Name(), site)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	if dryRun {
		return outputSiteAddDryRun(domain, drv.Name(), drv.Paths().Available, drv.Paths().Enabled, site, configContent)
	}

	if err := requireRoot(); err != nil {
		return err
	}

	output.Info("Creating site configuration...")
	if err := drv.Add(site, configContent); err != nil {
		return fmt.Errorf("failed to add site: %w", err)
	}

	output.Info("Enabling site...")
	if err := drv.Enable(domain); err != nil {
		// Rollback: remove config file
		_ = drv.Remove(domain)
		return fmt.Errorf("failed to enable site: %w", err)
	}

	rollback := func() error {
		output.Info("Rolling back changes...")
		if err := drv.Disable(domain); err != nil {
			output.Warn("Rollback disable failed: %v", err)
		}
		if err := drv.Remove(domain); err != nil {
			return fmt.Errorf("rollback remove failed: %w", err)
		}
		return nil
	}

	if err := testAndReload(drv, !noReload, rollback); err != nil {
		return err
	}

	cfg.Sites[domain] = site
	if err := saveConfig(cfg); err != nil {
		output.Warn("Site created but config save failed: %v", err)
	}

	return outputResult(
		map[string]interface{}{
			"success": true,
			"domain":  domain,
			"type":    siteType,
			"tls":     withTLS,
			"enabled": true,
		},
		"Site %s created and enabled", domain,
	)
}

func validateSiteAddOptions() error {
	switch siteType {
	case config.TypeStatic:
		if siteRoot == "" {
			return fmt.Errorf("--root is required for type static")
		}
		if err := validateRoot(siteRoot); err != nil {
			return err
		}
	case config.TypeProxy:
		if siteUpstream == "" {
			return fmt.Errorf("--upstream is required for type proxy")
		}
		if err := validateUpstream(siteUpstream); err != nil {
			return err
		}
	case config.TypeRedirect:
		if siteRedirect == "" {
			return fmt.Errorf("--to is required for type redirect")
		}
	case config.TypeContainer:
		return fmt.Errorf("container sites are created with: deckhand docker connect <container> <domain>")
	}
	return nil
}

// normalizeUpstream defaults the scheme so templates always have a full URL
func normalizeUpstream(upstream string) string {
	if upstream == "" || strings.Contains(upstream, "://") {
		return upstream
	}
	return "http://" + upstream
}

// outputSiteAddDryRun outputs what site add would do in dry-run mode
func outputSiteAddDryRun(domain, drvName, availableDir, enabledDir string, site *config.Site, configContent string) error {
	fileName := domain
	if drvName == "caddy" {
		fileName = domain + ".caddy"
	}

	configPath := filepath.Join(availableDir, fileName)
	enabledPath := filepath.Join(enabledDir, fileName)

	operations := []DryRunOperation{
		{
			Action:  "create_file",
			Target:  configPath,
			Details: fmt.Sprintf("Site configuration for %s", domain),
		},
		{
			Action:  "create_symlink",
			Target:  enabledPath,
			Details: fmt.Sprintf("Link to %s", configPath),
		},
	}

	if site.Root != "" {
		operations = append(operations, DryRunOperation{
			Action:  "create_directory",
			Target:  site.Root,
			Details: "Document root directory",
		})
	}

	if !noReload {
		operations = append(operations,
			DryRunOperation{
				Action:  "test_config",
				Target:  drvName,
				Details: "Validate configuration syntax",
			},
			DryRunOperation{
				Action:  "reload_server",
				Target:  drvName,
				Details: "Apply configuration changes",
			},
		)
	}

	return outputDryRun(&DryRunResult{
		Domain:        domain,
		Operations:    operations,
		ConfigPreview: configContent,
	})
}
