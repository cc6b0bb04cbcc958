package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/output"
)

var siteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all sites",
	Long: `List all configured sites.

Examples:
  deckhand site list
  deckhand site ls --json`,
	RunE: runSiteList,
}

func init() {
	siteCmd.AddCommand(siteListCmd)
}

type siteListItem struct {
	Domain   string `json:"domain"`
	Type     string `json:"type"`
	Root     string `json:"root,omitempty"`
	Upstream string `json:"upstream,omitempty"`
	TLS      bool   `json:"tls"`
	Enabled  bool   `json:"enabled"`
}

func runSiteList(cmd *cobra.Command, args []string) error {
	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	// Get list from driver (to check enabled status)
	driverDomains, err := drv.List()
	if err != nil {
		output.Warn("Could not read from %s: %v", drv.Name(), err)
	}

	items := make([]siteListItem, 0)
	for domain, site := range cfg.Sites {
		enabled, _ := drv.IsEnabled(domain)
		items = append(items, siteListItem{
			Domain:   domain,
			Type:     site.Type,
			Root:     site.Root,
			Upstream: site.Upstream,
			TLS:      site.TLS,
			Enabled:  enabled,
		})
	}

	// Also add domains found in the proxy but not in config
	for _, domain := range driverDomains {
		if _, exists := cfg.Sites[domain]; !exists {
			enabled, _ := drv.IsEnabled(domain)
			items = append(items, siteListItem{
				Domain:  domain,
				Type:    "unknown",
				Enabled: enabled,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Domain < items[j].Domain
	})

	if len(items) == 0 {
		if jsonOutput {
			return output.JSON([]siteListItem{})
		}
		output.Info("No sites configured")
		return nil
	}

	if jsonOutput {
		return output.JSON(items)
	}

	headers := []string{"DOMAIN", "TYPE", "TARGET", "TLS", "ENABLED"}
	rows := make([][]string, 0, len(items))

	for _, item := range items {
		target := item.Root
		if item.Upstream != "" {
			target = item.Upstream
		}

		rows = append(rows, []string{
			item.Domain,
			item.Type,
			target,
			yesNo(item.TLS),
			yesNo(item.Enabled),
		})
	}

	output.Table(headers, rows)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
