package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"vsp/internal/domain"
	"vsp/internal/fileio"
	"vsp/internal/storage"
)

const separatorWidth = 79

// Aggregator renders the summary table and the detailed per-case logs
// for the selected test cases, always from the persisted records (the
// report may run as a separate invocation from execution).
type Aggregator struct {
	store storage.Store
}

// NewAggregator creates a new Aggregator
func NewAggregator(store storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Render prints one summary line per case to sink, then the captured
// logs. When detailPath is set the logs go to that file (gzip when the
// name ends in .gz); otherwise they are buffered and echoed to sink
// after the summary, so summary and detail never interleave. An
// unreadable status file reports all phases as Not run instead of
// failing the report.
func (a *Aggregator) Render(cases []*domain.Context, sink io.Writer, detailPath string) error {
	var detail io.Writer
	var buffered *bytes.Buffer
	if detailPath != "" {
		w, err := fileio.Create(detailPath)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer w.Close()
		detail = w
	} else {
		buffered = &bytes.Buffer{}
		detail = buffered
	}

	separator := strings.Repeat("-", separatorWidth)
	fmt.Fprintln(sink, separator)
	fmt.Fprintf(sink, "%-40s %-12s %-12s %-12s\n", "testcase", "prepare", "run", "test")
	fmt.Fprintln(sink, separator)

	for _, tc := range cases {
		rec := a.store.Load(tc.StatusFile)
		line := fmt.Sprintf("%-40s %-12s %-12s %-12s",
			tc.CaseID,
			rec.StatusOf(domain.PhasePrepare).Display(),
			rec.StatusOf(domain.PhaseRun).Display(),
			rec.StatusOf(domain.PhaseCheck).Display())
		summaryColor(rec).Fprintln(sink, line)

		fmt.Fprintf(detail, "%s\n==  %s\n%s\n", strings.Repeat("=", separatorWidth),
			tc.CaseID, strings.Repeat("=", separatorWidth))
		fmt.Fprint(detail, rec.Log)
		if rec.Log != "" && !strings.HasSuffix(rec.Log, "\n") {
			fmt.Fprintln(detail)
		}
	}
	fmt.Fprintln(sink, separator)

	if buffered != nil {
		if _, err := io.Copy(sink, buffered); err != nil {
			return err
		}
	}
	return nil
}

// summaryColor picks the line color from the worst phase status.
func summaryColor(rec *domain.Record) *color.Color {
	worst := domain.StatusOk
	for _, phase := range domain.ExecPhases {
		switch rec.StatusOf(phase) {
		case domain.StatusFailed, domain.StatusError:
			return color.New(color.FgRed)
		case domain.StatusInterrupted:
			worst = domain.StatusInterrupted
		case domain.StatusNotRun:
			if worst == domain.StatusOk {
				worst = domain.StatusNotRun
			}
		}
	}
	switch worst {
	case domain.StatusOk:
		return color.New(color.FgGreen)
	case domain.StatusInterrupted:
		return color.New(color.FgYellow)
	}
	return color.New(color.Reset)
}
