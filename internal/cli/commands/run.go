package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"code.cloudfoundry.org/clock"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"instcheck/internal/config"
	"instcheck/internal/discovery"
	"instcheck/internal/execution"
	"instcheck/internal/report"
	"instcheck/internal/storage"
	"instcheck/internal/ui"
)

// ErrTestsFailed is returned by run with --fail-exit when a test case failed
var ErrTestsFailed = errors.New("test cases failed")

// RunCommand handles the run command
type RunCommand struct {
	config   *config.Config
	filter   *discovery.Filter
	executor execution.StepExecutor
	clock    clock.Clock
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	filter *discovery.Filter,
	executor execution.StepExecutor,
	clk clock.Clock,
) *RunCommand {
	return &RunCommand{
		config:   cfg,
		filter:   filter,
		executor: executor,
		clock:    clk,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) (err error) {
	root := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	scanner := discovery.NewScanner(rc.config.PathsToIgnore, rc.config.TestCasePattern)
	runner := execution.NewRunner(rc.config, scanner, rc.filter, rc.executor, rc.clock)

	// Discover test cases
	configs, err := runner.Discover(root)
	if err != nil {
		return fmt.Errorf("discover test cases: %w", err)
	}
	if len(configs) == 0 {
		color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "No test cases found")
	}

	out, closeOutput, err := openOutput(rc.config.Output, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer func() {
		if cerr := closeOutput(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", cerr))
		}
	}()

	sink, err := rc.openSink(ctx, out)
	if err != nil {
		return err
	}
	// Finalizes the XML document before the output file is closed.
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close results: %w", cerr))
		}
	}()

	if !rc.config.Flags.NoProgress && len(configs) > 0 {
		runner.SetProgress(ui.NewProgressBar(cmd.ErrOrStderr(), len(configs)))
	}

	summary, err := runner.Run(ctx, configs, sink)
	ui.NewFormatter(cmd.ErrOrStderr(), root).PrintSummary(summary)
	if err != nil {
		return err
	}

	if rc.config.FailExit && summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrTestsFailed, summary.Failed, summary.Total())
	}
	return nil
}

// openSink returns the XML writer on out, fanned out to the MySQL history when
// recording is enabled.
func (rc *RunCommand) openSink(ctx context.Context, out io.Writer) (report.Sink, error) {
	xmlWriter, err := report.NewXMLWriter(out)
	if err != nil {
		return nil, err
	}
	if !rc.config.Record {
		return xmlWriter, nil
	}

	recorder, err := storage.OpenMySQLSink(ctx, storage.SettingsFromEnv(), storage.NewRunID(rc.clock), rc.clock)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open result history: %w", err), xmlWriter.Close())
	}
	return report.Multi(xmlWriter, recorder), nil
}
