package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/input"
	"github.com/deckhand-sh/deckhand/internal/output"
)

var (
	forceRemove bool
)

var siteRemoveCmd = &cobra.Command{
	Use:     "remove <domain>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a site",
	Long: `Remove a site configuration.

Examples:
  deckhand site remove example.com
  deckhand site rm example.com --force`,
	Args: cobra.ExactArgs(1),
	RunE: runSiteRemove,
}

func init() {
	siteRemoveCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "Force removal without confirmation")
	siteRemoveCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload the proxy")

	siteCmd.AddCommand(siteRemoveCmd)
}

func runSiteRemove(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := validateDomain(domain); err != nil {
		return err
	}

	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	if dryRun {
		fileName := domain
		if drv.Name() == "caddy" {
			fileName = domain + ".caddy"
		}
		return outputDryRun(&DryRunResult{
			Domain: domain,
			Operations: []DryRunOperation{
				{Action: "remove_symlink", Target: filepath.Join(drv.Paths().Enabled, fileName)},
				{Action: "remove_file", Target: filepath.Join(drv.Paths().Available, fileName)},
				{Action: "reload_server", Target: drv.Name()},
			},
		})
	}

	if err := requireRoot(); err != nil {
		return err
	}

	// Confirm removal if not forced
	if !forceRemove {
		output.Print("Are you sure you want to remove site '%s'? [y/N]: ", domain)
		yes, err := input.Confirm(deps.StdinReader, false)
		if err != nil {
			return err
		}
		if !yes {
			output.Info("Removal cancelled")
			return nil
		}
	}

	output.Info("Removing site configuration...")
	if err := drv.Remove(domain); err != nil {
		return fmt.Errorf("failed to remove site: %w", err)
	}

	// Test and reload (no rollback for remove)
	if err := testAndReload(drv, !noReload, nil); err != nil {
		output.Warn("Post-removal check failed: %v", err)
		// Continue anyway since the site is already removed
	}

	delete(cfg.Sites, domain)
	if err := saveConfig(cfg); err != nil {
		output.Warn("Site removed but config save failed: %v", err)
	}

	return outputResult(
		map[string]interface{}{
			"success": true,
			"domain":  domain,
			"removed": true,
		},
		"Site %s removed", domain,
	)
}
