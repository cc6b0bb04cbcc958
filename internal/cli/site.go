package cli

import (
	"github.com/spf13/cobra"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Manage reverse proxy sites",
}

func init() {
	rootCmd.AddCommand(siteCmd)
}
