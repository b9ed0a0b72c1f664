package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"vsp/internal/domain"
	"vsp/internal/storage"
	"vsp/internal/tester"
)

// ErrRunAborted signals that the user interrupted twice in short
// succession and the whole run must stop entering new phases and test
// cases.
var ErrRunAborted = errors.New("run aborted by user")

// defaultInterruptWindow is how long the runner pauses after an
// interrupted phase; a second interrupt within the window aborts the
// whole run instead of just the phase.
const defaultInterruptWindow = 2 * time.Second

// PhaseRunner executes single phases against the gating rules, updates
// the record and persists it after every attempt, so process
// termination between phases loses at most the in-flight result.
type PhaseRunner struct {
	store   storage.Store
	signals <-chan os.Signal
	window  time.Duration
}

// NewPhaseRunner creates a PhaseRunner. signals delivers user
// interrupts; it may be nil when interruption is not wired (tests).
func NewPhaseRunner(store storage.Store, signals <-chan os.Signal) *PhaseRunner {
	return &PhaseRunner{store: store, signals: signals, window: defaultInterruptWindow}
}

// RunPhase executes one execution phase for one test case if the gating
// rules allow it. The only error it returns is ErrRunAborted.
func (pr *PhaseRunner) RunPhase(ctx context.Context, phase domain.Phase, tc *domain.Context, rec *domain.Record, t tester.Tester) error {
	if !pr.shouldRun(phase, tc, rec, t) {
		return nil
	}
	status := pr.execute(ctx, phase, tc, t)
	rec.SetStatus(phase, status)
	rec.Log = tc.Log.String()
	pr.store.Save(tc.StatusFile, rec)
	if status == domain.StatusInterrupted {
		return pr.pauseForAbort()
	}
	return nil
}

// shouldRun applies the gating rules: a phase already Ok is never
// re-executed, Run needs Prepare Ok, Check needs Run Ok and a finished
// run as reported by the tester.
func (pr *PhaseRunner) shouldRun(phase domain.Phase, tc *domain.Context, rec *domain.Record, t tester.Tester) bool {
	if rec.StatusOf(phase) == domain.StatusOk {
		tc.Log.Printf("%s: %s: already done, skipping", tc.CaseID, phase)
		return false
	}
	switch phase {
	case domain.PhaseRun:
		if rec.StatusOf(domain.PhasePrepare) != domain.StatusOk {
			tc.Log.Printf("%s: %s: skipped, prepare not successful", tc.CaseID, phase)
			return false
		}
	case domain.PhaseCheck:
		if rec.StatusOf(domain.PhaseRun) != domain.StatusOk {
			tc.Log.Printf("%s: %s: skipped, run not successful", tc.CaseID, phase)
			return false
		}
		if !t.RunFinished() {
			tc.Log.Printf("%s: %s: skipped, run has not finished yet", tc.CaseID, phase)
			return false
		}
	}
	return true
}

// execute invokes one tester operation inside the error boundary that
// maps cancellation, raised errors and negative check results onto the
// status taxonomy.
func (pr *PhaseRunner) execute(ctx context.Context, phase domain.Phase, tc *domain.Context, t tester.Tester) domain.Status {
	tc.Log.Printf("%s: %s: started", tc.CaseID, phase)

	phaseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		passed bool
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		out := outcome{passed: true}
		defer func() {
			if r := recover(); r != nil {
				out = outcome{err: fmt.Errorf("panic: %v", r)}
			}
			done <- out
		}()
		switch phase {
		case domain.PhasePrepare:
			out.err = pr.prepareEnvelope(phaseCtx, tc, t)
		case domain.PhaseRun:
			out.err = t.Run(phaseCtx)
		case domain.PhaseCheck:
			out.passed, out.err = t.Test(phaseCtx)
		}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			tc.Log.Printf("%s: %s: error: %v", tc.CaseID, phase, out.err)
			return domain.StatusError
		}
		if !out.passed {
			tc.Log.Printf("%s: %s: FAILED", tc.CaseID, phase)
			return domain.StatusFailed
		}
		tc.Log.Printf("%s: %s: OK", tc.CaseID, phase)
		return domain.StatusOk
	case <-pr.signals:
		cancel()
		tc.Log.Printf("%s: %s: interrupted", tc.CaseID, phase)
		return domain.StatusInterrupted
	}
}

// prepareEnvelope recreates the work directory before invoking the
// tester's prepare operation.
func (pr *PhaseRunner) prepareEnvelope(ctx context.Context, tc *domain.Context, t tester.Tester) error {
	if err := os.RemoveAll(tc.WorkDir); err != nil {
		return fmt.Errorf("remove work dir: %w", err)
	}
	if err := os.MkdirAll(tc.WorkDir, 0755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	return t.Prepare(ctx)
}

// pauseForAbort waits for the interrupt window after an interrupted
// phase. A second interrupt within the window aborts the whole run.
func (pr *PhaseRunner) pauseForAbort() error {
	select {
	case <-pr.signals:
		return ErrRunAborted
	case <-time.After(pr.window):
		return nil
	}
}
