package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/logger"
)

var (
	jsonOutput bool
	verbose    bool
	dryRun     bool
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "deckhand",
	Short: "Server provisioning CLI",
	Long: `deckhand automates the recurring work of running a small server fleet:
reverse proxy sites on Nginx or Caddy, TLS certificates, DNS records,
firewall rules, Docker container wiring, and service supervision.

Most commands change system state and therefore need root. Pass --dry-run
to preview the operations without touching anything.`,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")
}
