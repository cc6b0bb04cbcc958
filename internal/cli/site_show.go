package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/acme"
	"github.com/deckhand-sh/deckhand/internal/output"
)

var siteShowCmd = &cobra.Command{
	Use:   "show <domain>",
	Short: "Show details of a site",
	Long: `Show detailed information about a site.

Examples:
  deckhand site show example.com
  deckhand site show example.com --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSiteShow,
}

func init() {
	siteCmd.AddCommand(siteShowCmd)
}

// siteDetail represents the detailed site information for output
type siteDetail struct {
	Domain     string     `json:"domain"`
	Type       string     `json:"type"`
	Aliases    []string   `json:"aliases,omitempty"`
	Root       string     `json:"root,omitempty"`
	Upstream   string     `json:"upstream,omitempty"`
	Container  string     `json:"container,omitempty"`
	RedirectTo string     `json:"redirect_to,omitempty"`
	TLS        bool       `json:"tls"`
	TLSCert    string     `json:"tls_cert,omitempty"`
	TLSKey     string     `json:"tls_key,omitempty"`
	TLSExpires *time.Time `json:"tls_expires,omitempty"`
	Enabled    bool       `json:"enabled"`
	CreatedAt  time.Time  `json:"created_at"`
}

func runSiteShow(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := validateDomain(domain); err != nil {
		return err
	}

	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	site, exists := cfg.Sites[domain]
	if !exists {
		return fmt.Errorf("site %s not found", domain)
	}

	enabled, err := drv.IsEnabled(domain)
	if err != nil {
		output.Warn("Could not determine enabled status: %v", err)
	}

	detail := siteDetail{
		Domain:     site.Domain,
		Type:       site.Type,
		Aliases:    site.Aliases,
		Root:       site.Root,
		Upstream:   site.Upstream,
		Container:  site.Container,
		RedirectTo: site.RedirectTo,
		TLS:        site.TLS,
		TLSCert:    site.TLSCert,
		TLSKey:     site.TLSKey,
		Enabled:    enabled,
		CreatedAt:  site.CreatedAt,
	}

	// Get certificate expiry if the site serves TLS
	if site.TLS && site.TLSCert != "" {
		if info, err := acme.Inspect(site.TLSCert); err == nil {
			detail.TLSExpires = &info.NotAfter
		}
	}

	if jsonOutput {
		return output.JSON(detail)
	}

	output.Print("")
	output.Print("Domain:     %s", detail.Domain)
	output.Print("Type:       %s", detail.Type)

	if len(detail.Aliases) > 0 {
		output.Print("Aliases:    %s", strings.Join(detail.Aliases, ", "))
	}
	if detail.Root != "" {
		output.Print("Root:       %s", detail.Root)
	}
	if detail.Upstream != "" {
		output.Print("Upstream:   %s", detail.Upstream)
	}
	if detail.Container != "" {
		output.Print("Container:  %s", detail.Container)
	}
	if detail.RedirectTo != "" {
		output.Print("Redirect:   %s", detail.RedirectTo)
	}

	if detail.TLS {
		output.Print("TLS:        enabled")
		if detail.TLSCert != "" {
			output.Print("  Cert:     %s", detail.TLSCert)
		}
		if detail.TLSKey != "" {
			output.Print("  Key:      %s", detail.TLSKey)
		}
		if detail.TLSExpires != nil {
			output.Print("  Expires:  %s", detail.TLSExpires.Format("2006-01-02"))
		}
	} else {
		output.Print("TLS:        disabled")
	}

	output.Print("Enabled:    %s", yesNo(detail.Enabled))
	output.Print("Created:    %s", detail.CreatedAt.Format("2006-01-02 15:04:05"))
	output.Print("")

	return nil
}
