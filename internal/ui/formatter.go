package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"instcheck/internal/domain"
)

// ListedCase is one entry of the list command's output
type ListedCase struct {
	Path string
	Case *domain.TestCase // nil when the configuration failed to load
	Err  error
}

// Formatter formats and displays output
type Formatter struct {
	out  io.Writer
	root string
}

// NewFormatter creates a Formatter writing to out. Paths are shown relative to root.
func NewFormatter(out io.Writer, root string) *Formatter {
	return &Formatter{out: out, root: root}
}

// PrintSummary prints the statistics of a finished run and its failed test cases.
func (f *Formatter) PrintSummary(summary domain.Summary) {
	w := f.out
	fmt.Fprintln(w)
	color.New(color.FgCyan).Fprintln(w, "╔═════════════════════════════════════════════╗")
	color.New(color.FgCyan).Fprintln(w, "║           Installer Test Statistics         ║")
	color.New(color.FgCyan).Fprintln(w, "╚═════════════════════════════════════════════╝")

	rows := []struct {
		label string
		value string
		attr  color.Attribute
	}{
		{"Test Cases", fmt.Sprint(summary.Total()), color.FgWhite},
		{"Passed", fmt.Sprint(summary.Passed), color.FgGreen},
		{"Failed", fmt.Sprint(summary.Failed), color.FgRed},
		{"Skipped", fmt.Sprint(summary.Skipped), color.FgYellow},
		{"Duration", fmt.Sprintf("%.2fs", summary.Duration.Seconds()), color.FgWhite},
	}

	fmt.Fprintln(w, "┌──────────────────────┬──────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(w, "│ %-20s │ ", row.label)
		color.New(row.attr).Fprintf(w, "%-20s", row.value)
		fmt.Fprintln(w, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(w, "├──────────────────────┼──────────────────────┤")
		}
	}
	fmt.Fprintln(w, "└──────────────────────┴──────────────────────┘")
	fmt.Fprintln(w)

	if len(summary.Failures) == 0 {
		color.New(color.FgGreen).Fprintln(w, "✓ All test cases passed!")
		return
	}

	color.New(color.FgRed).Fprintf(w, "✗ %d test case(s) failed\n", len(summary.Failures))
	for i, failure := range summary.Failures {
		connector := "├── "
		if i == len(summary.Failures)-1 {
			connector = "└── "
		}
		color.New(color.FgYellow).Fprintf(w, "%s%s", connector, failure.Name)
		fmt.Fprintf(w, ": %s\n", firstLine(failure.Message))
	}
}

// PrintTestCases prints a tree of test cases and their steps. Test cases that do
// not run on platform are marked as skipped.
func (f *Formatter) PrintTestCases(cases []ListedCase, platform string) {
	w := f.out
	color.New(color.FgGreen).Fprintf(w, "Found %d test case(s):\n\n", len(cases))

	for i, listed := range cases {
		lastCase := i == len(cases)-1
		connector, indent := "├── ", "│   "
		if lastCase {
			connector, indent = "└── ", "    "
		}

		rel := f.relative(listed.Path)
		if listed.Err != nil {
			color.New(color.FgCyan).Fprintf(w, "%s%s ", connector, rel)
			color.New(color.FgRed).Fprintf(w, "(invalid: %v)\n", listed.Err)
			continue
		}

		tc := listed.Case
		color.New(color.FgCyan).Fprintf(w, "%s%s", connector, tc.Name)
		fmt.Fprintf(w, " (%s)", rel)
		if !tc.SupportsPlatform(platform) {
			color.New(color.FgYellow).Fprintf(w, " [skipped on %s]", platform)
		}
		fmt.Fprintln(w)

		if len(tc.Steps) == 0 {
			fmt.Fprintf(w, "%s└── %s\n", indent, color.RedString("(no steps)"))
		}
		for j, step := range tc.Steps {
			stepConnector := "├── "
			if j == len(tc.Steps)-1 {
				stepConnector = "└── "
			}
			fmt.Fprintf(w, "%s%s%s %s", indent, stepConnector, step.Name(), color.YellowString(f.relative(step.InstallScript)))
			if step.CheckerTestDir != "" {
				fmt.Fprintf(w, " checker=%s", f.relative(step.CheckerTestDir))
			}
			if step.Timeout != domain.DefaultStepTimeout {
				fmt.Fprintf(w, " timeout=%v", step.Timeout)
			}
			fmt.Fprintln(w)
		}
	}
}

func (f *Formatter) relative(path string) string {
	if f.root == "" {
		return path
	}
	rel, err := filepath.Rel(f.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
