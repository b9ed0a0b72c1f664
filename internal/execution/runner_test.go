package execution

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vsp/internal/domain"
)

// fakeTester scripts the five lifecycle operations.
type fakeTester struct {
	prepareErr error
	runErr     error
	runFn      func(ctx context.Context) error
	finished   bool
	testPass   bool
	testErr    error
	cleanupErr error
	calls      []string
}

func (f *fakeTester) Prepare(ctx context.Context) error {
	f.calls = append(f.calls, "prepare")
	return f.prepareErr
}

func (f *fakeTester) Run(ctx context.Context) error {
	f.calls = append(f.calls, "run")
	if f.runFn != nil {
		return f.runFn(ctx)
	}
	return f.runErr
}

func (f *fakeTester) RunFinished() bool { return f.finished }

func (f *fakeTester) Test(ctx context.Context) (bool, error) {
	f.calls = append(f.calls, "test")
	return f.testPass, f.testErr
}

func (f *fakeTester) Cleanup(ctx context.Context) error {
	f.calls = append(f.calls, "cleanup")
	return f.cleanupErr
}

func (f *fakeTester) called(op string) bool {
	for _, c := range f.calls {
		if c == op {
			return true
		}
	}
	return false
}

// memStore records every save so tests can check the
// persisted-after-every-attempt contract.
type memStore struct {
	records   map[string]*domain.Record
	snapshots []map[domain.Phase]domain.Status
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*domain.Record)}
}

func (s *memStore) Load(path string) *domain.Record {
	if rec, ok := s.records[path]; ok {
		return rec
	}
	return domain.NewRecord()
}

func (s *memStore) Save(path string, rec *domain.Record) {
	s.records[path] = rec
	snap := make(map[domain.Phase]domain.Status, len(rec.Status))
	for k, v := range rec.Status {
		snap[k] = v
	}
	s.snapshots = append(s.snapshots, snap)
}

func newTestContext(t *testing.T) *domain.Context {
	t.Helper()
	return domain.NewContext(t.TempDir(), t.TempDir(), "case1", nil)
}

func TestPhaseRunner_Gating(t *testing.T) {
	ctx := context.Background()

	t.Run("ok phase is never re-executed", func(t *testing.T) {
		store := newMemStore()
		runner := NewPhaseRunner(store, nil)
		tc := newTestContext(t)
		rec := domain.NewRecord()
		rec.SetStatus(domain.PhasePrepare, domain.StatusOk)
		ft := &fakeTester{}

		if err := runner.RunPhase(ctx, domain.PhasePrepare, tc, rec, ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ft.called("prepare") {
			t.Error("prepare must be skipped when already ok")
		}
		if len(store.snapshots) != 0 {
			t.Error("a skipped phase must not trigger a save")
		}
	})

	t.Run("run needs prepare ok", func(t *testing.T) {
		runner := NewPhaseRunner(newMemStore(), nil)
		tc := newTestContext(t)
		rec := domain.NewRecord()
		rec.SetStatus(domain.PhasePrepare, domain.StatusError)
		ft := &fakeTester{}

		if err := runner.RunPhase(ctx, domain.PhaseRun, tc, rec, ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ft.called("run") {
			t.Error("run must be skipped when prepare failed")
		}
		if rec.StatusOf(domain.PhaseRun) != domain.StatusNotRun {
			t.Errorf("run status must stay %s, got %s", domain.StatusNotRun, rec.StatusOf(domain.PhaseRun))
		}
	})

	t.Run("check needs finished run", func(t *testing.T) {
		runner := NewPhaseRunner(newMemStore(), nil)
		tc := newTestContext(t)
		rec := domain.NewRecord()
		rec.SetStatus(domain.PhasePrepare, domain.StatusOk)
		rec.SetStatus(domain.PhaseRun, domain.StatusOk)
		ft := &fakeTester{finished: false}

		if err := runner.RunPhase(ctx, domain.PhaseCheck, tc, rec, ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ft.called("test") {
			t.Error("check must wait for the run to finish")
		}
		if rec.StatusOf(domain.PhaseCheck) != domain.StatusNotRun {
			t.Errorf("check status must stay %s, got %s", domain.StatusNotRun, rec.StatusOf(domain.PhaseCheck))
		}
	})

	t.Run("interrupted phase is re-attempted", func(t *testing.T) {
		runner := NewPhaseRunner(newMemStore(), nil)
		tc := newTestContext(t)
		rec := domain.NewRecord()
		rec.SetStatus(domain.PhasePrepare, domain.StatusOk)
		rec.SetStatus(domain.PhaseRun, domain.StatusInterrupted)
		ft := &fakeTester{}

		if err := runner.RunPhase(ctx, domain.PhaseRun, tc, rec, ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ft.called("run") {
			t.Error("interrupted run must be re-attempted")
		}
		if rec.StatusOf(domain.PhaseRun) != domain.StatusOk {
			t.Errorf("expected %s, got %s", domain.StatusOk, rec.StatusOf(domain.PhaseRun))
		}
	})
}

func TestPhaseRunner_Classification(t *testing.T) {
	ctx := context.Background()

	t.Run("prepare error", func(t *testing.T) {
		store := newMemStore()
		runner := NewPhaseRunner(store, nil)
		tc := newTestContext(t)
		rec := domain.NewRecord()
		ft := &fakeTester{prepareErr: errors.New("no input")}

		if err := runner.RunPhase(ctx, domain.PhasePrepare, tc, rec, ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.StatusOf(domain.PhasePrepare) != domain.StatusError {
			t.Errorf("expected %s, got %s", domain.StatusError, rec.StatusOf(domain.PhasePrepare))
		}
		if len(store.snapshots) != 1 {
			t.Errorf("expected 1 save, got %d", len(store.snapshots))
		}
		if rec.Log == "" || tc.Log.String() == "" {
			t.Error("error message must be captured into the log")
		}
	})

	t.Run("failed check", func(t *testing.T) {
		runner := NewPhaseRunner(newMemStore(), nil)
		tc := newTestContext(t)
		rec := domain.NewRecord()
		rec.SetStatus(domain.PhasePrepare, domain.StatusOk)
		rec.SetStatus(domain.PhaseRun, domain.StatusOk)
		ft := &fakeTester{finished: true, testPass: false}

		if err := runner.RunPhase(ctx, domain.PhaseCheck, tc, rec, ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.StatusOf(domain.PhaseCheck) != domain.StatusFailed {
			t.Errorf("expected %s, got %s", domain.StatusFailed, rec.StatusOf(domain.PhaseCheck))
		}
	})

	t.Run("check infrastructure error", func(t *testing.T) {
		runner := NewPhaseRunner(newMemStore(), nil)
		tc := newTestContext(t)
		rec := domain.NewRecord()
		rec.SetStatus(domain.PhasePrepare, domain.StatusOk)
		rec.SetStatus(domain.PhaseRun, domain.StatusOk)
		ft := &fakeTester{finished: true, testPass: false, testErr: errors.New("reference unreadable")}

		if err := runner.RunPhase(ctx, domain.PhaseCheck, tc, rec, ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.StatusOf(domain.PhaseCheck) != domain.StatusError {
			t.Errorf("expected %s, got %s", domain.StatusError, rec.StatusOf(domain.PhaseCheck))
		}
	})

	t.Run("successful run", func(t *testing.T) {
		runner := NewPhaseRunner(newMemStore(), nil)
		tc := newTestContext(t)
		rec := domain.NewRecord()
		rec.SetStatus(domain.PhasePrepare, domain.StatusOk)
		ft := &fakeTester{}

		if err := runner.RunPhase(ctx, domain.PhaseRun, tc, rec, ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.StatusOf(domain.PhaseRun) != domain.StatusOk {
			t.Errorf("expected %s, got %s", domain.StatusOk, rec.StatusOf(domain.PhaseRun))
		}
	})
}

func TestPhaseRunner_PrepareRecreatesWorkDir(t *testing.T) {
	runner := NewPhaseRunner(newMemStore(), nil)
	tc := newTestContext(t)

	if err := os.MkdirAll(tc.WorkDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stale := filepath.Join(tc.WorkDir, "stale.dat")
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec := domain.NewRecord()
	if err := runner.RunPhase(context.Background(), domain.PhasePrepare, tc, rec, &fakeTester{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("prepare must wipe the work directory")
	}
	if _, err := os.Stat(tc.WorkDir); err != nil {
		t.Error("prepare must recreate the work directory")
	}
}

func TestPhaseRunner_Interrupt(t *testing.T) {
	blockingRun := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	t.Run("single interrupt downgrades the phase", func(t *testing.T) {
		sigCh := make(chan os.Signal, 2)
		sigCh <- os.Interrupt
		runner := NewPhaseRunner(newMemStore(), sigCh)
		runner.window = 10 * time.Millisecond

		tc := newTestContext(t)
		rec := domain.NewRecord()
		rec.SetStatus(domain.PhasePrepare, domain.StatusOk)
		ft := &fakeTester{runFn: blockingRun}

		if err := runner.RunPhase(context.Background(), domain.PhaseRun, tc, rec, ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.StatusOf(domain.PhaseRun) != domain.StatusInterrupted {
			t.Errorf("expected %s, got %s", domain.StatusInterrupted, rec.StatusOf(domain.PhaseRun))
		}
	})

	t.Run("second interrupt aborts the run", func(t *testing.T) {
		sigCh := make(chan os.Signal, 2)
		sigCh <- os.Interrupt
		sigCh <- os.Interrupt
		runner := NewPhaseRunner(newMemStore(), sigCh)
		runner.window = time.Second

		tc := newTestContext(t)
		rec := domain.NewRecord()
		rec.SetStatus(domain.PhasePrepare, domain.StatusOk)
		ft := &fakeTester{runFn: blockingRun}

		err := runner.RunPhase(context.Background(), domain.PhaseRun, tc, rec, ft)
		if !errors.Is(err, ErrRunAborted) {
			t.Fatalf("expected ErrRunAborted, got %v", err)
		}
		if rec.StatusOf(domain.PhaseRun) != domain.StatusInterrupted {
			t.Errorf("expected %s, got %s", domain.StatusInterrupted, rec.StatusOf(domain.PhaseRun))
		}
	})
}

func TestPhaseRunner_RecoversPanic(t *testing.T) {
	runner := NewPhaseRunner(newMemStore(), nil)
	tc := newTestContext(t)
	rec := domain.NewRecord()
	rec.SetStatus(domain.PhasePrepare, domain.StatusOk)
	ft := &fakeTester{runFn: func(ctx context.Context) error { panic("tester bug") }}

	if err := runner.RunPhase(context.Background(), domain.PhaseRun, tc, rec, ft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.StatusOf(domain.PhaseRun) != domain.StatusError {
		t.Errorf("expected %s, got %s", domain.StatusError, rec.StatusOf(domain.PhaseRun))
	}
}
