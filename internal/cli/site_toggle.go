package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/output"
)

var siteEnableCmd = &cobra.Command{
	Use:   "enable <domain>",
	Short: "Enable a site",
	Long: `Enable a site by creating a symlink in the enabled directory.

Examples:
  deckhand site enable example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runSiteEnable,
}

var siteDisableCmd = &cobra.Command{
	Use:   "disable <domain>",
	Short: "Disable a site",
	Long: `Disable a site without removing its configuration.

Examples:
  deckhand site disable example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runSiteDisable,
}

func init() {
	siteEnableCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload the proxy")
	siteDisableCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload the proxy")

	siteCmd.AddCommand(siteEnableCmd)
	siteCmd.AddCommand(siteDisableCmd)
}

func runSiteEnable(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := validateDomain(domain); err != nil {
		return err
	}

	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	if dryRun {
		return outputDryRun(&DryRunResult{
			Domain: domain,
			Operations: []DryRunOperation{
				{Action: "create_symlink", Target: domain, Details: "Enable site"},
				{Action: "test_config", Target: drv.Name()},
				{Action: "reload_server", Target: drv.Name()},
			},
		})
	}

	if err := requireRoot(); err != nil {
		return err
	}

	output.Info("Enabling site...")
	if err := drv.Enable(domain); err != nil {
		return fmt.Errorf("failed to enable site: %w", err)
	}

	// Test and reload with rollback
	rollback := func() error {
		return drv.Disable(domain)
	}

	if err := testAndReload(drv, !noReload, rollback); err != nil {
		return err
	}

	if site, exists := cfg.Sites[domain]; exists {
		site.Enabled = true
		if err := saveConfig(cfg); err != nil {
			output.Warn("Site enabled but config save failed: %v", err)
		}
	}

	return outputResult(newSuccessResult(domain, "enabled"), "Site %s enabled", domain)
}

func runSiteDisable(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := validateDomain(domain); err != nil {
		return err
	}

	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	if dryRun {
		return outputDryRun(&DryRunResult{
			Domain: domain,
			Operations: []DryRunOperation{
				{Action: "remove_symlink", Target: domain, Details: "Disable site"},
				{Action: "reload_server", Target: drv.Name()},
			},
		})
	}

	if err := requireRoot(); err != nil {
		return err
	}

	output.Info("Disabling site...")
	if err := drv.Disable(domain); err != nil {
		return fmt.Errorf("failed to disable site: %w", err)
	}

	if err := testAndReload(drv, !noReload, nil); err != nil {
		output.Warn("Post-disable check failed: %v", err)
	}

	if site, exists := cfg.Sites[domain]; exists {
		site.Enabled = false
		if err := saveConfig(cfg); err != nil {
			output.Warn("Site disabled but config save failed: %v", err)
		}
	}

	return outputResult(newSuccessResult(domain, "disabled"), "Site %s disabled", domain)
}
