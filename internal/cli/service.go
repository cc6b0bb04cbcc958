package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/output"
	"github.com/deckhand-sh/deckhand/internal/service"
)

// serviceTimeout bounds unit queries and restarts.
const serviceTimeout = 30 * time.Second

var (
	followLogs bool
	logLines   int
)

// serviceSupervisor is the slice of service.Supervisor the commands use;
// a var factory so tests can substitute a fake.
type serviceSupervisor interface {
	Status(ctx context.Context, unit string) (*service.UnitStatus, error)
	Restart(ctx context.Context, unit string) error
	Enable(ctx context.Context, unit string) error
	Logs(unit string, follow bool, lines int) error
	Close()
}

var newSupervisor = func() serviceSupervisor {
	return service.NewSupervisor(deps.Executor)
}

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Supervise host services",
}

var serviceStatusCmd = &cobra.Command{
	Use:   "status <unit>",
	Short: "Show a unit's state",
	Long: `Show the systemd state of a unit.

Examples:
  deckhand service status nginx
  deckhand service status fail2ban --json`,
	Args: cobra.ExactArgs(1),
	RunE: runServiceStatus,
}

var serviceRestartCmd = &cobra.Command{
	Use:   "restart <unit>",
	Short: "Restart a unit",
	Args:  cobra.ExactArgs(1),
	RunE:  runServiceRestart,
}

var serviceLogsCmd = &cobra.Command{
	Use:   "logs <unit>",
	Short: "Show a unit's journal",
	Long: `Stream a unit's journal through journalctl.

Examples:
  deckhand service logs nginx
  deckhand service logs nginx -f -n 200`,
	Args: cobra.ExactArgs(1),
	RunE: runServiceLogs,
}

var serviceHardenCmd = &cobra.Command{
	Use:   "harden",
	Short: "Install fail2ban brute-force protection",
	Long: `Write the fail2ban jail drop-in (sshd plus nginx auth and botsearch
jails), reload fail2ban, and enable it at boot.`,
	RunE: runServiceHarden,
}

func init() {
	serviceLogsCmd.Flags().BoolVarP(&followLogs, "follow", "f", false, "Follow the journal")
	serviceLogsCmd.Flags().IntVarP(&logLines, "lines", "n", 50, "Number of lines to show")

	serviceCmd.AddCommand(serviceStatusCmd)
	serviceCmd.AddCommand(serviceRestartCmd)
	serviceCmd.AddCommand(serviceLogsCmd)
	serviceCmd.AddCommand(serviceHardenCmd)
	rootCmd.AddCommand(serviceCmd)
}

func runServiceStatus(cmd *cobra.Command, args []string) error {
	unit := args[0]

	sup := newSupervisor()
	defer sup.Close()

	ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer cancel()

	status, err := sup.Status(ctx, unit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(status)
	}

	if status.ActiveState == "active" {
		output.Success("%s is %s (%s)", status.Name, status.ActiveState, status.SubState)
	} else {
		output.Warn("%s is %s (%s)", status.Name, status.ActiveState, status.SubState)
	}
	return nil
}

func runServiceRestart(cmd *cobra.Command, args []string) error {
	unit := args[0]

	if dryRun {
		return outputDryRun(&DryRunResult{
			Operations: []DryRunOperation{
				{Action: "restart_unit", Target: unit},
			},
		})
	}
	if err := requireRoot(); err != nil {
		return err
	}

	sup := newSupervisor()
	defer sup.Close()

	ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer cancel()

	output.Info("Restarting %s...", unit)
	if err := sup.Restart(ctx, unit); err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{"success": true, "unit": unit, "restarted": true},
		"%s restarted", unit,
	)
}

func runServiceLogs(cmd *cobra.Command, args []string) error {
	sup := newSupervisor()
	defer sup.Close()
	return sup.Logs(args[0], followLogs, logLines)
}

func runServiceHarden(cmd *cobra.Command, args []string) error {
	paths, err := deps.PlatformDetector.DetectPaths()
	if err != nil {
		return err
	}

	hardener := service.NewHardener(deps.Executor, paths.Fail2banDir)

	if dryRun {
		return outputDryRun(&DryRunResult{
			Operations: []DryRunOperation{
				{Action: "write_file", Target: hardener.JailPath(), Details: "fail2ban jails: sshd, nginx-http-auth, nginx-botsearch"},
				{Action: "reload_service", Target: "fail2ban"},
				{Action: "enable_unit", Target: "fail2ban"},
			},
		})
	}
	if err := requireRoot(); err != nil {
		return err
	}

	if !hardener.IsInstalled() {
		return fmt.Errorf("fail2ban is not installed; install it first (apt install fail2ban)")
	}

	output.Info("Writing fail2ban jails...")
	jailPath, err := hardener.WriteJail()
	if err != nil {
		return err
	}

	output.Info("Reloading fail2ban...")
	if err := hardener.Reload(); err != nil {
		return err
	}

	sup := newSupervisor()
	defer sup.Close()

	ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer cancel()
	if err := sup.Enable(ctx, "fail2ban"); err != nil {
		output.Warn("Could not enable fail2ban at boot: %v", err)
	}

	return outputResult(
		map[string]interface{}{"success": true, "jail_file": jailPath},
		"fail2ban hardening applied (%s)", jailPath,
	)
}
