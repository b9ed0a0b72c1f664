package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"vsp/internal/domain"
)

// LogViewer displays persisted test case records in an interactive TUI:
// the case list on the left, statuses and captured log on the right.
type LogViewer struct{}

// NewLogViewer creates a new LogViewer
func NewLogViewer() *LogViewer {
	return &LogViewer{}
}

// View opens the viewer over the given cases and their records. Both
// slices are parallel.
func (v *LogViewer) View(cases []*domain.Context, records []*domain.Record) error {
	if len(cases) == 0 {
		color.Yellow("No test cases selected")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, tc := range cases {
		marker := "[green]✓"
		if !recordPassed(records[i]) {
			marker = "[red]✗"
		}
		list.AddItem(fmt.Sprintf("%s [white]%s", marker, tc.CaseID), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statusView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	logView := tview.NewTextView().
		SetDynamicColors(false).
		SetWrap(true).
		SetWordWrap(true)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statusView, 4, 0, false).
		AddItem(logView, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	header := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)
	header.SetText(fmt.Sprintf(" Test case logs (%d cases) | ↑↓ navigate, → focus log, ← back, Ctrl+C exit ", len(cases)))

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(cases) {
			return
		}
		tc := cases[index]
		rec := records[index]
		statusView.SetText(fmt.Sprintf("[yellow]%s[white]\nprepare: %s   run: %s   test: %s",
			tc.CaseID,
			coloredStatus(rec.StatusOf(domain.PhasePrepare)),
			coloredStatus(rec.StatusOf(domain.PhaseRun)),
			coloredStatus(rec.StatusOf(domain.PhaseCheck))))
		text := rec.Log
		if strings.TrimSpace(text) == "" {
			text = "(no log captured)"
		}
		logView.SetText(text).ScrollToBeginning()
	}

	list.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		updateDetails()
	})
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRight || event.Key() == tcell.KeyEnter {
			app.SetFocus(logView)
			return nil
		}
		return event
	})
	logView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyLeft || event.Key() == tcell.KeyEscape {
			app.SetFocus(list)
			return nil
		}
		return event
	})

	updateDetails()

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(flex, 0, 1, true)

	return app.SetRoot(layout, true).Run()
}

func recordPassed(rec *domain.Record) bool {
	for _, phase := range domain.ExecPhases {
		switch rec.StatusOf(phase) {
		case domain.StatusFailed, domain.StatusError, domain.StatusInterrupted:
			return false
		}
	}
	return true
}

func coloredStatus(s domain.Status) string {
	switch s {
	case domain.StatusOk:
		return "[green]" + s.Display() + "[white]"
	case domain.StatusFailed, domain.StatusError:
		return "[red]" + s.Display() + "[white]"
	case domain.StatusInterrupted:
		return "[yellow]" + s.Display() + "[white]"
	}
	return s.Display()
}
