package domain

import (
	"fmt"
	"time"
)

// DefaultStepTimeout is used when a step does not declare a timeout.
const DefaultStepTimeout = time.Hour

// TestCase represents one installer test scenario loaded from a configuration file
type TestCase struct {
	Name                    string
	Steps                   []Step
	TargetDirectory         string
	MaintenanceToolLocation string
	Platforms               []string // lower-cased platform identifiers, empty means all
	Path                    string   // configuration file the test case was loaded from
}

// Step is one ordered action within a TestCase
type Step struct {
	Index          int    // N of the Step<N> section
	InstallScript  string // absolute path to the installer script
	CheckerTestDir string // directory with expected-file manifests, empty if none
	Timeout        time.Duration
}

// Name returns the section name the step was declared in.
func (s Step) Name() string {
	return fmt.Sprintf("Step%d", s.Index)
}

// SupportsPlatform reports whether the test case may run on platform.
func (tc *TestCase) SupportsPlatform(platform string) bool {
	if len(tc.Platforms) == 0 {
		return true
	}
	for _, p := range tc.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// StepResultName returns the result name used for a step of this test case.
func (tc *TestCase) StepResultName(step Step) string {
	return tc.Name + "/" + step.Name()
}

// FileExpectation describes the expected attributes of a verified file.
// A negative Size or an empty Digest leaves that attribute unchecked.
type FileExpectation struct {
	Size   int64
	Digest string
}
