package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/firewall"
	"github.com/deckhand-sh/deckhand/internal/output"
)

var (
	baselinePorts []string
)

var fwCmd = &cobra.Command{
	Use:   "fw",
	Short: "Manage the firewall (ufw)",
}

var fwEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable the firewall",
	RunE:  runFwEnable,
}

var fwDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable the firewall",
	RunE:  runFwDisable,
}

var fwAllowCmd = &cobra.Command{
	Use:   "allow <rule>",
	Short: "Allow a port or app profile",
	Long: `Allow traffic by port/protocol or ufw app profile.

Examples:
  deckhand fw allow 443/tcp
  deckhand fw allow OpenSSH`,
	Args: cobra.ExactArgs(1),
	RunE: runFwAllow,
}

var fwDenyCmd = &cobra.Command{
	Use:   "deny <rule>",
	Short: "Deny a port or app profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runFwDeny,
}

var fwDeleteCmd = &cobra.Command{
	Use:   "delete <allow|deny> <rule>",
	Short: "Delete a firewall rule",
	Args:  cobra.ExactArgs(2),
	RunE:  runFwDelete,
}

var fwStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show firewall status and rules",
	RunE:  runFwStatus,
}

var fwBaselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Apply the standard server firewall posture",
	Long: `Set default deny-incoming/allow-outgoing, allow OpenSSH plus the web
ports, then enable the firewall. Allows are applied before enabling so the
current ssh session is never cut off.

Examples:
  deckhand fw baseline
  deckhand fw baseline --port 8080/tcp`,
	RunE: runFwBaseline,
}

func init() {
	fwBaselineCmd.Flags().StringSliceVar(&baselinePorts, "port", []string{"80/tcp", "443/tcp"}, "Service ports to allow")

	fwCmd.AddCommand(fwEnableCmd)
	fwCmd.AddCommand(fwDisableCmd)
	fwCmd.AddCommand(fwAllowCmd)
	fwCmd.AddCommand(fwDenyCmd)
	fwCmd.AddCommand(fwDeleteCmd)
	fwCmd.AddCommand(fwStatusCmd)
	fwCmd.AddCommand(fwBaselineCmd)
	rootCmd.AddCommand(fwCmd)
}

func newFirewall() *firewall.UFW {
	return firewall.New(deps.Executor)
}

func runFwEnable(cmd *cobra.Command, args []string) error {
	if dryRun {
		return outputDryRun(&DryRunResult{
			Operations: []DryRunOperation{
				{Action: "firewall_enable", Target: "ufw", Details: "ufw --force enable"},
			},
		})
	}
	if err := requireRoot(); err != nil {
		return err
	}
	if err := newFirewall().Enable(); err != nil {
		return err
	}
	return outputResult(map[string]interface{}{"success": true, "active": true}, "Firewall enabled")
}

func runFwDisable(cmd *cobra.Command, args []string) error {
	if dryRun {
		return outputDryRun(&DryRunResult{
			Operations: []DryRunOperation{
				{Action: "firewall_disable", Target: "ufw"},
			},
		})
	}
	if err := requireRoot(); err != nil {
		return err
	}
	if err := newFirewall().Disable(); err != nil {
		return err
	}
	return outputResult(map[string]interface{}{"success": true, "active": false}, "Firewall disabled")
}

func runFwAllow(cmd *cobra.Command, args []string) error {
	return applyFwRule("allow", args[0])
}

func runFwDeny(cmd *cobra.Command, args []string) error {
	return applyFwRule("deny", args[0])
}

func applyFwRule(action, target string) error {
	if dryRun {
		return outputDryRun(&DryRunResult{
			Operations: []DryRunOperation{
				{Action: "firewall_rule", Target: target, Details: "ufw " + action + " " + target},
			},
		})
	}
	if err := requireRoot(); err != nil {
		return err
	}

	fw := newFirewall()
	var err error
	if action == "allow" {
		err = fw.Allow(target)
	} else {
		err = fw.Deny(target)
	}
	if err != nil {
		return err
	}
	return outputResult(
		map[string]interface{}{"success": true, "action": action, "rule": target},
		"Rule applied: %s %s", action, target,
	)
}

func runFwDelete(cmd *cobra.Command, args []string) error {
	action, target := args[0], args[1]

	if dryRun {
		return outputDryRun(&DryRunResult{
			Operations: []DryRunOperation{
				{Action: "firewall_delete_rule", Target: target, Details: "ufw delete " + action + " " + target},
			},
		})
	}
	if err := requireRoot(); err != nil {
		return err
	}
	if err := newFirewall().Delete(action, target); err != nil {
		return err
	}
	return outputResult(
		map[string]interface{}{"success": true, "deleted": action + " " + target},
		"Rule deleted: %s %s", action, target,
	)
}

func runFwStatus(cmd *cobra.Command, args []string) error {
	rules, active, err := newFirewall().Status()
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]interface{}{
			"active": active,
			"rules":  rules,
		})
	}

	if active {
		output.Success("Firewall is active")
	} else {
		output.Warn("Firewall is inactive")
	}

	if len(rules) == 0 {
		return nil
	}
	headers := []string{"TO", "ACTION", "FROM"}
	rows := make([][]string, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, []string{rule.Target, rule.Action, rule.From})
	}
	output.Table(headers, rows)
	return nil
}

func runFwBaseline(cmd *cobra.Command, args []string) error {
	if dryRun {
		operations := []DryRunOperation{
			{Action: "firewall_default", Target: "deny incoming"},
			{Action: "firewall_default", Target: "allow outgoing"},
			{Action: "firewall_rule", Target: "OpenSSH", Details: "ufw allow OpenSSH"},
		}
		for _, port := range baselinePorts {
			operations = append(operations, DryRunOperation{
				Action: "firewall_rule", Target: port, Details: "ufw allow " + port,
			})
		}
		operations = append(operations, DryRunOperation{Action: "firewall_enable", Target: "ufw"})
		return outputDryRun(&DryRunResult{Operations: operations})
	}

	if err := requireRoot(); err != nil {
		return err
	}

	output.Info("Applying firewall baseline (OpenSSH, %s)...", strings.Join(baselinePorts, ", "))
	if err := newFirewall().Baseline(baselinePorts); err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{"success": true, "active": true, "allowed": append([]string{"OpenSSH"}, baselinePorts...)},
		"Firewall baseline applied and enabled",
	)
}
