package execution

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instcheck/internal/config"
	"instcheck/internal/discovery"
	"instcheck/internal/domain"
	"instcheck/internal/report"
)

// fakeExecutor fails the scripts named in fail and advances the clock per call.
type fakeExecutor struct {
	clock *fakeclock.FakeClock
	fail  map[string]error
	calls []string
}

func (f *fakeExecutor) Execute(ctx context.Context, tc *domain.TestCase, step domain.Step) error {
	f.calls = append(f.calls, tc.Name+"/"+filepath.Base(step.InstallScript))
	f.clock.Increment(time.Second)
	return f.fail[filepath.Base(step.InstallScript)]
}

type fakeProgress struct {
	updates  [][3]int
	finished bool
}

func (p *fakeProgress) Update(passed, failed, skipped int) {
	p.updates = append(p.updates, [3]int{passed, failed, skipped})
}

func (p *fakeProgress) Finish() { p.finished = true }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestRunner(t *testing.T, cfg *config.Config, exec *fakeExecutor) *Runner {
	t.Helper()
	scanner := discovery.NewScanner(cfg.PathsToIgnore, cfg.TestCasePattern)
	return NewRunner(cfg, scanner, discovery.NewFilter(), exec, exec.clock)
}

func runAll(t *testing.T, r *Runner, root string) (domain.Summary, []domain.Result) {
	t.Helper()
	configs, err := r.Discover(root)
	require.NoError(t, err)
	sink := &report.Collector{}
	summary, err := r.Run(context.Background(), configs, sink)
	require.NoError(t, err)
	return summary, sink.Results
}

func names(results []domain.Result) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.Name+":"+string(r.Status))
	}
	return out
}

func TestRunner_Run(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a-pass", "tc.ini"), `name = pass
[Step0]
installscript = install.sh
[Step1]
installscript = update.sh
`)
	writeFile(t, filepath.Join(root, "b-fail", "tc.ini"), `name = fail
[Step0]
installscript = broken.sh
[Step1]
installscript = never.sh
`)
	writeFile(t, filepath.Join(root, "c-bad", "tc.ini"), `[Step0]
timeout = 10
`)
	writeFile(t, filepath.Join(root, "d-other", "tc.ini"), `name = other
[Step0]
installscript = other.sh
`)

	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	exec := &fakeExecutor{clock: clk, fail: map[string]error{
		"broken.sh": &StepError{Kind: KindExit, Script: "broken.sh", ExitCode: 2},
	}}
	cfg := config.New()
	cfg.Platform = "linux"
	runner := newTestRunner(t, cfg, exec)
	progress := &fakeProgress{}
	runner.SetProgress(progress)

	summary, results := runAll(t, runner, root)

	badConfig := filepath.Join(root, "c-bad", "tc.ini")
	assert.Equal(t, []string{
		"pass/Step0:passed",
		"pass/Step1:passed",
		"pass:passed",
		"fail/Step0:failed",
		"fail:failed",
		badConfig + ":failed",
		"other/Step0:passed",
		"other:passed",
	}, names(results))

	// Fail-fast within a test case, but the next test cases still run.
	assert.Equal(t, []string{"pass/install.sh", "pass/update.sh", "fail/broken.sh", "other/other.sh"}, exec.calls)

	assert.Equal(t, "broken.sh exited with code 2", results[3].Message)
	assert.Equal(t, "Step0: broken.sh exited with code 2", results[4].Message)
	assert.Contains(t, results[5].Message, "installscript")

	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 4*time.Second, summary.Duration)
	require.Len(t, summary.Failures, 2)
	assert.Equal(t, "fail", summary.Failures[0].Name)

	assert.Equal(t, time.Second, results[0].Duration)
	assert.Equal(t, 2*time.Second, results[2].Duration)

	assert.Len(t, progress.updates, 4)
	assert.Equal(t, [3]int{2, 2, 0}, progress.updates[3])
	assert.True(t, progress.finished)
}

func TestRunner_PlatformFiltering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "desktop.ini"), `name = desktop
platforms = linux,windows
[Step0]
installscript = install.sh
`)
	writeFile(t, filepath.Join(root, "mac.ini"), `name = mac
platforms = macos
[Step0]
installscript = install.sh
`)
	writeFile(t, filepath.Join(root, "any.ini"), `name = any
[Step0]
installscript = install.sh
`)

	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	exec := &fakeExecutor{clock: clk}
	cfg := config.New()
	cfg.Platform = "macos"

	summary, results := runAll(t, newTestRunner(t, cfg, exec), root)

	assert.Equal(t, []string{"any/Step0:passed", "any:passed", "mac/Step0:passed", "mac:passed"}, names(results))
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Passed)
	for _, r := range results {
		assert.False(t, strings.HasPrefix(r.Name, "desktop"), "skipped test case must not be reported")
	}
}

func TestRunner_ZeroSteps(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "empty.ini"), "name = empty\n")

	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	summary, results := runAll(t, newTestRunner(t, config.New(), &fakeExecutor{clock: clk}), root)

	assert.Equal(t, []string{"empty:passed"}, names(results))
	assert.Equal(t, 1, summary.Passed)
}

func TestRunner_CheckerDirectory(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	writeFile(t, filepath.Join(target, "bin", "app"), "hello world")
	writeFile(t, filepath.Join(root, "tc", "checker", "ok", "files.txt"), "bin/app; 11; 5eb63bbbe01eeed093cb22bb8f5acdc3\n")
	writeFile(t, filepath.Join(root, "tc", "checker", "missing", "files.txt"), "bin/app; 11;\nbin/gone; ;\n")
	writeFile(t, filepath.Join(root, "tc", "tc.ini"), `name = checked
targetDirectory = `+target+`
[Step0]
installscript = install.sh
checkerTestDir = checker/ok
[Step1]
installscript = update.sh
checkerTestDir = checker/missing
[Step2]
installscript = never.sh
`)

	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	exec := &fakeExecutor{clock: clk}
	cfg := config.New()
	cfg.TestCasePattern = "tc.ini"

	summary, results := runAll(t, newTestRunner(t, cfg, exec), root)

	assert.Equal(t, []string{"checked/Step0:passed", "checked/Step1:failed", "checked:failed"}, names(results))
	assert.Equal(t, filepath.Join(target, "bin", "gone")+": file does not exist", results[1].Message)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, exec.calls, 2)

	t.Run("prefix overrides target directory", func(t *testing.T) {
		cfg := config.New()
		cfg.TestCasePattern = "tc.ini"
		cfg.Prefix = filepath.Join(root, "elsewhere")
		_, results := runAll(t, newTestRunner(t, cfg, &fakeExecutor{clock: clk}), root)
		assert.Equal(t, "checked/Step0:failed", names(results)[0])
	})
}

func TestRunner_NameFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "online", "tc.ini"), "name = online\n")
	writeFile(t, filepath.Join(root, "offline", "tc.ini"), "name = offline\n")

	cfg := config.New()
	cfg.Flags.NameFilter = "offline"
	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	_, results := runAll(t, newTestRunner(t, cfg, &fakeExecutor{clock: clk}), root)
	assert.Equal(t, []string{"offline:passed"}, names(results))
}

type failingSink struct{ report.Collector }

func (f *failingSink) Add(r domain.Result) error {
	return errors.New("disk full")
}

func TestRunner_SinkErrorIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ini"), "[Step0]\ninstallscript = a.sh\n")
	writeFile(t, filepath.Join(root, "b.ini"), "[Step0]\ninstallscript = b.sh\n")

	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	exec := &fakeExecutor{clock: clk}
	r := newTestRunner(t, config.New(), exec)
	configs, err := r.Discover(root)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), configs, &failingSink{})
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, exec.calls, 1)
}

func TestRunner_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ini"), "[Step0]\ninstallscript = a.sh\n[Step1]\ninstallscript = b.sh\n")
	writeFile(t, filepath.Join(root, "b.ini"), "[Step0]\ninstallscript = c.sh\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	exec := &fakeExecutor{clock: clk, fail: map[string]error{
		"a.sh": &StepError{Kind: KindCanceled, Script: "a.sh", Err: context.Canceled},
	}}
	r := newTestRunner(t, config.New(), exec)
	configs, err := r.Discover(root)
	require.NoError(t, err)

	cancel()
	sink := &report.Collector{}
	_, err = r.Run(ctx, configs, sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.calls)
	assert.Empty(t, sink.Results)
}

func TestRunner_DiscoverBadRoot(t *testing.T) {
	clk := fakeclock.NewFakeClock(time.Unix(0, 0))
	r := newTestRunner(t, config.New(), &fakeExecutor{clock: clk})
	_, err := r.Discover(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
