package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"instcheck/internal/config"
	"instcheck/internal/discovery"
	"instcheck/internal/testcase"
	"instcheck/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config *config.Config
	filter *discovery.Filter
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, filter *discovery.Filter) *ListCommand {
	return &ListCommand{
		config: cfg,
		filter: filter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	root := args[0]
	scanner := discovery.NewScanner(lc.config.PathsToIgnore, lc.config.TestCasePattern)
	paths, err := scanner.Scan(root)
	if err != nil {
		return err
	}

	// Filter test cases
	paths = lc.filter.FilterByName(paths, lc.config.Flags.NameFilter)

	if len(paths) == 0 {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No test cases found")
		return nil
	}

	cases := make([]ui.ListedCase, 0, len(paths))
	for _, path := range paths {
		tc, err := testcase.Load(path)
		cases = append(cases, ui.ListedCase{Path: path, Case: tc, Err: err})
	}

	ui.NewFormatter(cmd.OutOrStdout(), root).PrintTestCases(cases, lc.config.GetPlatform())
	return nil
}
