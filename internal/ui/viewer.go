package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"instcheck/internal/domain"
)

// Viewer displays test results
type Viewer interface {
	View(results []domain.Result) error
}

// ResultViewer displays failed results of a run in an interactive TUI
type ResultViewer struct {
	out io.Writer
}

// NewResultViewer creates a ResultViewer. Messages that need no TUI go to out.
func NewResultViewer(out io.Writer) *ResultViewer {
	return &ResultViewer{out: out}
}

// View shows the failed results with a details pane. R toggles the reviewed
// marker of the selected entry.
func (rv *ResultViewer) View(results []domain.Result) error {
	failures := failedResults(results)
	if len(failures) == 0 {
		color.New(color.FgGreen).Fprintf(rv.out, "✓ No failures among %d result(s)\n", len(results))
		return nil
	}

	reviewed := make(map[int]bool)
	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, failure := range failures {
		list.AddItem(listItemText(i, failure, false), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(" Failures (%d of %d results, %d reviewed) | ↑↓ navigate, [yellow]R[white] mark reviewed, → details, ← back, Ctrl+C exit ",
			len(failures), len(results), len(reviewed)))
	}
	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(failures) {
			detailsView.SetText(formatResultDetails(failures[index]))
			detailsView.ScrollToBeginning()
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if reviewed[index] {
					delete(reviewed, index)
				} else {
					reviewed[index] = true
				}
				list.SetItemText(index, listItemText(index, failures[index], reviewed[index]), "")
				updateHeader()
				return nil
			}
		}
		return event
	})
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})
	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(detailsView, 0, 2, false)
	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func failedResults(results []domain.Result) []domain.Result {
	var failures []domain.Result
	for _, r := range results {
		if r.Status == domain.StatusFailed {
			failures = append(failures, r)
		}
	}
	return failures
}

func listItemText(index int, result domain.Result, reviewed bool) string {
	name := tview.Escape(result.Name)
	if reviewed {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
}

// formatResultDetails renders a result using tview color tags.
func formatResultDetails(result domain.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[red]✗ %s[white]\n\n", tview.Escape(result.Name))

	message := result.Message
	if message == "" {
		message = "(no message)"
	}
	head, output, hasOutput := strings.Cut(message, "\noutput:\n")
	fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", tview.Escape(head))
	if hasOutput {
		fmt.Fprintf(&b, "\n[yellow]Output:[white]\n%s\n", tview.Escape(output))
	}
	return b.String()
}
