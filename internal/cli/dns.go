package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/dns"
	"github.com/deckhand-sh/deckhand/internal/output"
)

// dnsTimeout bounds every provider API call.
const dnsTimeout = 30 * time.Second

var (
	dnsTTL int
)

var dnsCmd = &cobra.Command{
	Use:   "dns",
	Short: "Manage DNS records in the configured zone",
}

var dnsSetCmd = &cobra.Command{
	Use:   "set <name> <type> <content>",
	Short: "Create or update a record",
	Long: `Create or update a DNS record. Setting an existing name/type pair
replaces its content. Use "@" for the zone apex.

Examples:
  deckhand dns set @ A 203.0.113.7
  deckhand dns set www CNAME example.com
  deckhand dns set app A 203.0.113.7 --ttl 600`,
	Args: cobra.ExactArgs(3),
	RunE: runDNSSet,
}

var dnsDeleteCmd = &cobra.Command{
	Use:     "delete <name> <type>",
	Aliases: []string{"rm"},
	Short:   "Delete a record",
	Args:    cobra.ExactArgs(2),
	RunE:    runDNSDelete,
}

var dnsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List records in the zone",
	RunE:    runDNSList,
}

var dnsVerifyCmd = &cobra.Command{
	Use:   "verify <name> <type> <content>",
	Short: "Check record propagation",
	Long: `Query each authoritative nameserver of the zone directly and report
whether the record has propagated.

Examples:
  deckhand dns verify www A 203.0.113.7`,
	Args: cobra.ExactArgs(3),
	RunE: runDNSVerify,
}

func init() {
	dnsSetCmd.Flags().IntVar(&dnsTTL, "ttl", 0, "Record TTL in seconds (defaults to config)")

	dnsCmd.AddCommand(dnsSetCmd)
	dnsCmd.AddCommand(dnsDeleteCmd)
	dnsCmd.AddCommand(dnsListCmd)
	dnsCmd.AddCommand(dnsVerifyCmd)
	rootCmd.AddCommand(dnsCmd)
}

func dnsProvider() (*config.Config, dns.Provider, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	provider, err := deps.DNSFactory.Create(cfg.DNS)
	if err != nil {
		return nil, nil, err
	}
	return cfg, provider, nil
}

func runDNSSet(cmd *cobra.Command, args []string) error {
	name, recordType, content := args[0], strings.ToUpper(args[1]), args[2]

	cfg, provider, err := dnsProvider()
	if err != nil {
		return err
	}

	ttl := dnsTTL
	if ttl <= 0 {
		ttl = cfg.DNS.TTL
	}

	rec := dns.Record{Type: recordType, Name: name, Content: content, TTL: ttl}

	if dryRun {
		return outputDryRun(&DryRunResult{
			Operations: []DryRunOperation{
				{
					Action:  "set_record",
					Target:  fmt.Sprintf("%s %s %s", name, recordType, provider.Zone()),
					Details: fmt.Sprintf("Content %s, TTL %d", content, ttl),
				},
			},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()

	if err := provider.Set(ctx, rec); err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{"success": true, "record": rec, "zone": provider.Zone()},
		"Record %s %s set in %s", name, recordType, provider.Zone(),
	)
}

func runDNSDelete(cmd *cobra.Command, args []string) error {
	name, recordType := args[0], strings.ToUpper(args[1])

	_, provider, err := dnsProvider()
	if err != nil {
		return err
	}

	if dryRun {
		return outputDryRun(&DryRunResult{
			Operations: []DryRunOperation{
				{Action: "delete_record", Target: fmt.Sprintf("%s %s %s", name, recordType, provider.Zone())},
			},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()

	if err := provider.Delete(ctx, name, recordType); err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{"success": true, "name": name, "type": recordType},
		"Record %s %s deleted", name, recordType,
	)
}

func runDNSList(cmd *cobra.Command, args []string) error {
	_, provider, err := dnsProvider()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()

	records, err := provider.List(ctx)
	if err != nil {
		return err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].Type < records[j].Type
	})

	if jsonOutput {
		return output.JSON(records)
	}

	if len(records) == 0 {
		output.Info("No records in zone %s", provider.Zone())
		return nil
	}

	headers := []string{"NAME", "TYPE", "CONTENT", "TTL"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{rec.Name, rec.Type, rec.Content, fmt.Sprintf("%d", rec.TTL)})
	}
	output.Table(headers, rows)
	return nil
}

func runDNSVerify(cmd *cobra.Command, args []string) error {
	name, recordType, content := args[0], strings.ToUpper(args[1]), args[2]

	_, provider, err := dnsProvider()
	if err != nil {
		return err
	}

	rec := dns.Record{Type: recordType, Name: name, Content: content}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()

	output.Info("Checking propagation of %s %s against authoritative nameservers...", name, recordType)
	results, allGood, err := dns.NewVerifier().Verify(ctx, provider.Zone(), rec)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]interface{}{
			"propagated":  allGood,
			"nameservers": results,
		})
	}

	for _, r := range results {
		switch {
		case r.Err != "":
			output.Error("%s: %s", r.Nameserver, r.Err)
		case r.Found:
			output.Success("%s: found", r.Nameserver)
		default:
			output.Warn("%s: not found (values: %s)", r.Nameserver, strings.Join(r.Values, ", "))
		}
	}

	if allGood {
		output.Success("Record fully propagated")
		return nil
	}
	output.Warn("Record not yet propagated everywhere")
	return nil
}
