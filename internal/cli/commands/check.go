package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"instcheck/internal/config"
	"instcheck/internal/verify"
)

// CheckCommand handles the check command
type CheckCommand struct {
	config *config.Config
}

// NewCheckCommand creates a new CheckCommand
func NewCheckCommand(cfg *config.Config) *CheckCommand {
	return &CheckCommand{config: cfg}
}

// Execute verifies one manifest and prints every mismatch
func (cc *CheckCommand) Execute(cmd *cobra.Command, args []string) error {
	failures, err := verify.Mismatches(args[0], cc.config.Prefix)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(failures) == 0 {
		color.New(color.FgGreen).Fprintf(out, "✓ %s: all files match\n", args[0])
		return nil
	}
	for _, failure := range failures {
		color.New(color.FgRed).Fprintf(out, "✗ %v\n", failure)
	}
	return fmt.Errorf("%s: %d file(s) do not match", args[0], len(failures))
}
