package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"code.cloudfoundry.org/clock"

	"instcheck/internal/config"
	"instcheck/internal/discovery"
	"instcheck/internal/domain"
	"instcheck/internal/report"
	"instcheck/internal/testcase"
	"instcheck/internal/verify"
)

// Progress receives the running totals after every test case
type Progress interface {
	Update(passed, failed, skipped int)
	Finish()
}

// Runner discovers test cases and executes them one after another
type Runner struct {
	config   *config.Config
	scanner  *discovery.Scanner
	filter   *discovery.Filter
	executor StepExecutor
	clock    clock.Clock
	progress Progress
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, scanner *discovery.Scanner, filter *discovery.Filter, executor StepExecutor, clk clock.Clock) *Runner {
	return &Runner{
		config:   cfg,
		scanner:  scanner,
		filter:   filter,
		executor: executor,
		clock:    clk,
	}
}

// SetProgress sets the progress reporter for the runner
func (r *Runner) SetProgress(progress Progress) {
	r.progress = progress
}

// Discover returns the test case configuration files below root that pass the
// name filter.
func (r *Runner) Discover(root string) ([]string, error) {
	paths, err := r.scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	return r.filter.FilterByName(paths, r.config.Flags.NameFilter), nil
}

// Run executes the given test case configurations in order and reports every
// result to sink. Failures of a test case never stop the others; the returned
// error is set only when the sink fails or ctx is canceled.
func (r *Runner) Run(ctx context.Context, configs []string, sink report.Sink) (summary domain.Summary, err error) {
	start := r.clock.Now()
	defer func() {
		summary.Duration = r.clock.Since(start)
		if r.progress != nil {
			r.progress.Finish()
		}
	}()

	platform := r.config.GetPlatform()
	for _, path := range configs {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		result, skipped, runErr := r.runTestCase(ctx, path, platform, sink)
		switch {
		case skipped:
			summary.Skipped++
		case result.Status == domain.StatusPassed:
			summary.Passed++
		default:
			summary.Failed++
			summary.Failures = append(summary.Failures, result)
		}
		if r.progress != nil {
			r.progress.Update(summary.Passed, summary.Failed, summary.Skipped)
		}
		if runErr != nil {
			return summary, runErr
		}
	}
	return summary, nil
}

// runTestCase loads and executes one configuration. The returned error is fatal
// for the whole run.
func (r *Runner) runTestCase(ctx context.Context, path, platform string, sink report.Sink) (domain.Result, bool, error) {
	tc, err := testcase.Load(path)
	if err != nil {
		slog.Warn("cannot load test case", "config", path, "error", err)
		result := domain.Failed(path, err.Error())
		return result, false, r.add(sink, result)
	}

	if !tc.SupportsPlatform(platform) {
		slog.Info("skipping test case", "testcase", tc.Name, "platform", platform, "supported", tc.Platforms)
		return domain.Result{}, true, nil
	}

	start := r.clock.Now()
	result := domain.Passed(tc.Name, "")
	for _, step := range tc.Steps {
		stepStart := r.clock.Now()
		stepErr := r.runStep(ctx, tc, step)

		stepResult := domain.Passed(tc.StepResultName(step), "")
		if stepErr != nil {
			stepResult = domain.Failed(tc.StepResultName(step), stepErr.Error())
			result = domain.Failed(tc.Name, fmt.Sprintf("%s: %v", step.Name(), stepErr))
		}
		stepResult.Duration = r.clock.Since(stepStart)
		if err := r.add(sink, stepResult); err != nil {
			return result, false, err
		}

		if stepErr != nil {
			slog.Debug("step failed", "testcase", tc.Name, "step", step.Name(), "error", stepErr)
			var se *StepError
			if errors.As(stepErr, &se) && se.Kind == KindCanceled {
				result.Duration = r.clock.Since(start)
				return result, false, errors.Join(r.add(sink, result), ctx.Err())
			}
			break
		}
	}

	result.Duration = r.clock.Since(start)
	return result, false, r.add(sink, result)
}

// runStep runs the installer script and then checks the step's manifests.
func (r *Runner) runStep(ctx context.Context, tc *domain.TestCase, step domain.Step) error {
	if err := r.executor.Execute(ctx, tc, step); err != nil {
		return err
	}
	if step.CheckerTestDir == "" {
		return nil
	}
	return verify.CheckDir(step.CheckerTestDir, r.config.ManifestPattern, r.checkPrefix(tc))
}

// checkPrefix returns the directory relative manifest paths are resolved against.
func (r *Runner) checkPrefix(tc *domain.TestCase) string {
	if r.config.Prefix != "" {
		return r.config.Prefix
	}
	return tc.TargetDirectory
}

func (r *Runner) add(sink report.Sink, result domain.Result) error {
	if err := sink.Add(result); err != nil {
		return fmt.Errorf("record result %q: %w", result.Name, err)
	}
	return nil
}
