// Package testcase loads installer test case descriptions from INI files.
//
// A configuration holds global keys in its default section and one section per
// step, named Step0, Step1, ... Steps are probed in order and discovery stops at
// the first missing index, so a gap in the numbering drops every later step.
package testcase

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"instcheck/internal/domain"
)

const (
	keyName                    = "name"
	keyTargetDirectory         = "targetDirectory"
	keyMaintenanceToolLocation = "maintenanceToolLocation"
	keyPlatforms               = "platforms"
	keyInstallScript           = "installscript"
	keyCheckerTestDir          = "checkerTestDir"
	keyTimeout                 = "timeout"
)

var stepSectionPattern = regexp.MustCompile(`^Step(\d+)$`)

// Load parses the configuration file at path into a TestCase.
func Load(path string) (*domain.TestCase, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	global := f.Section(ini.DefaultSection)
	tc := &domain.TestCase{
		Path:                    path,
		Name:                    stringValue(global, keyName, baseName(path)),
		TargetDirectory:         stringValue(global, keyTargetDirectory, ""),
		MaintenanceToolLocation: stringValue(global, keyMaintenanceToolLocation, ""),
		Platforms:               parsePlatforms(stringValue(global, keyPlatforms, "")),
	}

	dir := filepath.Dir(path)
	for n, sec := range Sections(f) {
		step, err := parseStep(dir, n, sec, global)
		if err != nil {
			var cerr *ConfigError
			if errors.As(err, &cerr) {
				cerr.Path = path
			}
			return nil, err
		}
		tc.Steps = append(tc.Steps, step)
	}

	if ignored := unreachableSteps(f, len(tc.Steps)); len(ignored) > 0 {
		slog.Warn("step numbering has a gap, later steps are ignored",
			"config", path, "missing", domain.Step{Index: len(tc.Steps)}.Name(), "ignored", ignored)
	}
	return tc, nil
}

// Sections yields Step0, Step1, ... until the first index without a section.
func Sections(f *ini.File) iter.Seq2[int, *ini.Section] {
	return func(yield func(int, *ini.Section) bool) {
		for n := 0; ; n++ {
			sec, err := f.GetSection(domain.Step{Index: n}.Name())
			if err != nil {
				return
			}
			if !yield(n, sec) {
				return
			}
		}
	}
}

func parseStep(dir string, n int, sec, global *ini.Section) (domain.Step, error) {
	step := domain.Step{Index: n, Timeout: domain.DefaultStepTimeout}

	script := stringValue(sec, keyInstallScript, stringValue(global, keyInstallScript, ""))
	if script == "" {
		return step, &ConfigError{Section: sec.Name(), Key: keyInstallScript, Err: errors.New("missing required key")}
	}
	step.InstallScript = absolutePath(script, dir)

	if checker := stringValue(sec, keyCheckerTestDir, stringValue(global, keyCheckerTestDir, "")); checker != "" {
		step.CheckerTestDir = absolutePath(checker, dir)
	}

	if raw := stringValue(sec, keyTimeout, stringValue(global, keyTimeout, "")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return step, &ConfigError{Section: sec.Name(), Key: keyTimeout, Err: fmt.Errorf("not an integer: %q", raw)}
		}
		if seconds <= 0 {
			return step, &ConfigError{Section: sec.Name(), Key: keyTimeout, Err: fmt.Errorf("must be positive, got %d", seconds)}
		}
		step.Timeout = time.Duration(seconds) * time.Second
	}
	return step, nil
}

// unreachableSteps returns Step sections numbered above the first gap.
func unreachableSteps(f *ini.File, count int) []string {
	var ignored []int
	for _, name := range f.SectionStrings() {
		m := stepSectionPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && n > count {
			ignored = append(ignored, n)
		}
	}
	sort.Ints(ignored)

	names := make([]string, 0, len(ignored))
	for _, n := range ignored {
		names = append(names, domain.Step{Index: n}.Name())
	}
	return names
}

func stringValue(sec *ini.Section, key, fallback string) string {
	if !sec.HasKey(key) {
		return fallback
	}
	return strings.TrimSpace(sec.Key(key).String())
}

func parsePlatforms(raw string) []string {
	var platforms []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			platforms = append(platforms, p)
		}
	}
	return platforms
}

func absolutePath(p, dir string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
