package cli

import (
	"github.com/deckhand-sh/deckhand/internal/output"
)

// DryRunOperation describes one system change a command would make.
type DryRunOperation struct {
	Action  string `json:"action"`
	Target  string `json:"target"`
	Details string `json:"details,omitempty"`
}

// DryRunResult is the full plan a command prints in dry-run mode.
type DryRunResult struct {
	Domain        string            `json:"domain,omitempty"`
	Operations    []DryRunOperation `json:"operations"`
	ConfigPreview string            `json:"config_preview,omitempty"`
}

// outputDryRun prints the planned operations without executing them.
func outputDryRun(result *DryRunResult) error {
	if jsonOutput {
		return output.JSON(map[string]interface{}{
			"dry_run": true,
			"result":  result,
		})
	}

	output.Warn("Dry run: no changes will be made")
	if result.Domain != "" {
		output.Print("Domain: %s", result.Domain)
	}
	output.Print("")
	output.Print("Planned operations:")
	for i, op := range result.Operations {
		output.Print("  %d. [%s] %s", i+1, op.Action, op.Target)
		if op.Details != "" {
			output.Print("     %s", op.Details)
		}
	}

	if result.ConfigPreview != "" {
		output.Print("")
		output.Print("Configuration preview:")
		output.Print("%s", result.ConfigPreview)
	}

	return nil
}
