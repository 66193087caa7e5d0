package commands

import (
	"code.cloudfoundry.org/clock"
	"github.com/spf13/cobra"

	"instcheck/internal/cli"
	"instcheck/internal/config"
	"instcheck/internal/discovery"
	"instcheck/internal/execution"
	"instcheck/internal/filelist"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Filelist *FilelistCommand
	Check    *CheckCommand
	View     *ViewCommand
}

// NewCommands creates all commands with dependencies. cfg is filled in by the
// root command before any of them executes.
func NewCommands(cfg *config.Config) *Commands {
	clk := clock.NewClock()
	filter := discovery.NewFilter()
	executor := execution.NewScriptExecutor(cfg)

	return &Commands{
		Run:      NewRunCommand(cfg, filter, executor, clk),
		List:     NewListCommand(cfg, filter),
		Filelist: NewFilelistCommand(cfg, filelist.NewGenerator()),
		Check:    NewCheckCommand(cfg),
		View:     NewViewCommand(),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		cfg.ApplyFlags(flags.ToConfigFlags())
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run <testcaseDir>",
		Short:   "Run installer test cases",
		Long:    "Discover test case configurations below testcaseDir, run their installer steps and verify the installed files. Results are written as XML.",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().StringVarP(&flags.Prefix, "omit-prefix", "p", "", "Directory relative manifest paths are resolved against (default: the test case's targetDirectory)")
	runCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Write the XML results to this file instead of stdout")
	runCmd.Flags().StringVar(&flags.Platform, "platform", "", "Platform test cases are filtered against (default: the host platform)")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test cases by name pattern (supports wildcards, e.g. '*offline*')")
	runCmd.Flags().StringVar(&flags.Interpreter, "interpreter", "", "Command used to start installer scripts, e.g. 'sh' or 'powershell -File'")
	runCmd.Flags().BoolVar(&flags.Record, "record", false, "Also record results in the MySQL history table (DB_* environment)")
	runCmd.Flags().BoolVar(&flags.FailExit, "fail-exit", false, "Exit with a nonzero status when a test case failed")
	runCmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Do not show the progress bar")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list <testcaseDir>",
		Short:   "List discovered test cases",
		Long:    "Scan and list all test cases and their steps without executing them",
		Args:    cobra.ExactArgs(1),
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test cases by name pattern (supports wildcards, e.g. '*offline*')")
	listCmd.Flags().StringVar(&flags.Platform, "platform", "", "Platform used to mark skipped test cases (default: the host platform)")
	rootCmd.AddCommand(listCmd)

	// Filelist command
	filelistCmd := &cobra.Command{
		Use:     "filelist <directory>",
		Short:   "Generate a manifest for a directory",
		Long:    "Walk directory and print one '<path>; <size>; <md5>' line per regular file",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Filelist.Execute,
		PreRunE: applyFlags,
	}
	filelistCmd.Flags().StringVarP(&flags.Prefix, "omit-prefix", "p", "", "Write paths relative to this directory")
	filelistCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Write the manifest to this file instead of stdout")
	rootCmd.AddCommand(filelistCmd)

	// Check command
	checkCmd := &cobra.Command{
		Use:     "check <manifest>",
		Short:   "Verify installed files against a manifest",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Check.Execute,
		PreRunE: applyFlags,
	}
	checkCmd.Flags().StringVarP(&flags.Prefix, "omit-prefix", "p", "", "Directory relative manifest paths are resolved against")
	rootCmd.AddCommand(checkCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:   "view <results.xml>",
		Short: "View failed results interactively",
		Long:  "Display the failed results of a run in an interactive viewer",
		Args:  cobra.ExactArgs(1),
		RunE:  c.View.Execute,
	}
	rootCmd.AddCommand(viewCmd)
}
