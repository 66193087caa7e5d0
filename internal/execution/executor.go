package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"instcheck/internal/config"
	"instcheck/internal/domain"
)

// defaultWaitDelay bounds how long Wait blocks on output pipes held open by
// descendants after the script itself has exited or was killed.
const defaultWaitDelay = 5 * time.Second

// StepExecutor runs the installer script of a single step
type StepExecutor interface {
	Execute(ctx context.Context, tc *domain.TestCase, step domain.Step) error
}

// ScriptExecutor runs installer scripts as external processes
type ScriptExecutor struct {
	config    *config.Config
	waitDelay time.Duration
}

// NewScriptExecutor creates a new ScriptExecutor
func NewScriptExecutor(cfg *config.Config) *ScriptExecutor {
	return &ScriptExecutor{config: cfg, waitDelay: defaultWaitDelay}
}

// Execute starts the step's installer script and waits for it, at most
// step.Timeout. A script still running at the deadline is killed together with
// its descendants. Failures are returned as *StepError.
func (e *ScriptExecutor) Execute(ctx context.Context, tc *domain.TestCase, step domain.Step) error {
	runCtx, cancel := context.WithTimeout(ctx, step.Timeout)
	defer cancel()

	name, args := e.command(step.InstallScript)
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = filepath.Dir(tc.Path)

	// Set environment variables
	cmd.Env = append(os.Environ(),
		"INSTCHECK_TESTCASE="+tc.Name,
		"INSTCHECK_STEP="+step.Name(),
		"INSTCHECK_TARGET_DIR="+tc.TargetDirectory,
		"INSTCHECK_MAINTENANCE_TOOL="+tc.MaintenanceToolLocation,
	)

	output := newTailBuffer(e.config.OutputTailBytes)
	cmd.Stdout = output
	cmd.Stderr = output

	startInOwnGroup(cmd)
	cmd.Cancel = func() error {
		slog.Debug("terminating installer script", "script", step.InstallScript, "pid", cmd.Process.Pid)
		return killProcessTree(cmd.Process.Pid)
	}
	cmd.WaitDelay = e.waitDelay

	slog.Debug("starting installer script", "testcase", tc.Name, "step", step.Name(), "script", step.InstallScript, "timeout", step.Timeout)
	if err := cmd.Start(); err != nil {
		return &StepError{Kind: KindLaunch, Script: step.InstallScript, Err: err}
	}
	err := cmd.Wait()
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		// The script exited 0 but left descendants holding its output open.
		slog.Warn("installer script left processes running, terminating them",
			"script", step.InstallScript, "pid", cmd.Process.Pid)
		if kerr := killProcessTree(cmd.Process.Pid); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			slog.Debug("cannot terminate leftover processes", "script", step.InstallScript, "error", kerr)
		}
		return nil
	}

	switch {
	case ctx.Err() != nil:
		return &StepError{Kind: KindCanceled, Script: step.InstallScript, Output: output.String(), Err: ctx.Err()}
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return &StepError{Kind: KindTimeout, Script: step.InstallScript, Timeout: step.Timeout, Output: output.String(), Err: runCtx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &StepError{Kind: KindExit, Script: step.InstallScript, ExitCode: exitErr.ExitCode(), Output: output.String(), Err: err}
	}
	return &StepError{Kind: KindExit, Script: step.InstallScript, ExitCode: -1, Output: output.String(), Err: fmt.Errorf("wait: %w", err)}
}

// command returns the program and arguments used to start script.
func (e *ScriptExecutor) command(script string) (string, []string) {
	interpreter := strings.Fields(e.config.Interpreter)
	if len(interpreter) == 0 {
		return script, nil
	}
	return interpreter[0], append(interpreter[1:], script)
}
