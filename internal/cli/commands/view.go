package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"instcheck/internal/report"
	"instcheck/internal/ui"
)

// ViewCommand handles the view command
type ViewCommand struct{}

// NewViewCommand creates a new ViewCommand
func NewViewCommand() *ViewCommand {
	return &ViewCommand{}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	results, err := report.ReadResults(f)
	if err != nil {
		return fmt.Errorf("read results %s: %w", args[0], err)
	}
	return ui.NewResultViewer(cmd.OutOrStdout()).View(results)
}
