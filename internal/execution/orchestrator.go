package execution

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/fatih/color"

	"vsp/internal/config"
	"vsp/internal/discovery"
	"vsp/internal/domain"
	"vsp/internal/storage"
	"vsp/internal/tester"
	"vsp/internal/ui"
)

// TesterLoader resolves the tester for a test case. Resolution may
// fail, which aborts only that test case.
type TesterLoader interface {
	Resolve(tc *domain.Context, env map[string]string) (tester.Tester, error)
}

// Reporter renders the summary and detail report over the selected test
// cases from their persisted records.
type Reporter interface {
	Render(cases []*domain.Context, sink io.Writer, detailPath string) error
}

// HistorySink optionally records run outcomes in an external store.
type HistorySink interface {
	Enabled() bool
	Record(cases []*domain.Context) error
}

// Orchestrator is the top-level driver: it resolves the selected test
// cases, builds one context per case and drives the requested phases in
// fixed order for each case in discovery order, then reports and cleans
// up.
type Orchestrator struct {
	cfg      *config.Config
	resolver *discovery.Resolver
	store    storage.Store
	loader   TesterLoader
	runner   *PhaseRunner
	reporter Reporter
	history  HistorySink
	console  io.Writer
	progress bool
}

// NewOrchestrator wires the orchestrator. history may be nil; console
// receives the live log echo and the report summary.
func NewOrchestrator(cfg *config.Config, resolver *discovery.Resolver, store storage.Store,
	loader TesterLoader, runner *PhaseRunner, reporter Reporter, history HistorySink,
	console io.Writer, progress bool) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		resolver: resolver,
		store:    store,
		loader:   loader,
		runner:   runner,
		reporter: reporter,
		history:  history,
		console:  console,
		progress: progress,
	}
}

// Run executes the full validation run for the configured selection.
func (o *Orchestrator) Run(ctx context.Context) error {
	phases, err := domain.PhasesFromLetters(o.cfg.Phases)
	if err != nil {
		return err
	}

	testRoot := o.cfg.GetTestRoot()
	ids, err := o.resolver.Resolve(testRoot, o.cfg.PatternFiles, o.patterns())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		color.Yellow("No test cases selected")
		return nil
	}

	cases := make([]*domain.Context, len(ids))
	for i, id := range ids {
		cases[i] = domain.NewContext(testRoot, o.cfg.GetWorkRoot(), id, o.console)
	}

	// Testers live for the whole invocation and are shared across the
	// execution phases and cleanup of their case.
	testers := make(map[string]tester.Tester, len(cases))

	if phases[domain.PhasePrepare] || phases[domain.PhaseRun] || phases[domain.PhaseCheck] {
		if err := o.executeAll(ctx, phases, cases, testers); err != nil {
			return err
		}
	}

	if phases[domain.PhaseReport] {
		if err := o.reporter.Render(cases, o.console, o.cfg.ReportFile); err != nil {
			return err
		}
		if o.history != nil && o.history.Enabled() {
			if err := o.history.Record(cases); err != nil {
				color.Yellow("warning: could not record run history: %v", err)
			}
		}
	}

	if phases[domain.PhaseCleanup] {
		o.cleanupAll(ctx, cases, testers)
	}
	return nil
}

// executeAll drives the execution phases sequentially over all cases.
// A phase failure is contained to its case; only a double interrupt
// stops the batch.
func (o *Orchestrator) executeAll(ctx context.Context, phases map[domain.Phase]bool,
	cases []*domain.Context, testers map[string]tester.Tester) error {
	var bar *ui.ProgressBar
	if o.progress {
		bar = ui.NewProgressBar(len(cases))
	}
	var passed, failed int

	for _, tc := range cases {
		rec := o.store.Load(tc.StatusFile)
		tc.Log.Seed(rec.Log)

		t, err := o.resolveTester(tc, testers)
		if err != nil {
			// Mark the first phase that was about to be attempted.
			for _, phase := range domain.ExecPhases {
				if !phases[phase] {
					continue
				}
				tc.Log.Printf("%s: %s: tester resolution failed: %v", tc.CaseID, phase, err)
				rec.SetStatus(phase, domain.StatusError)
				break
			}
			rec.Log = tc.Log.String()
			o.store.Save(tc.StatusFile, rec)
		} else {
			for _, phase := range domain.ExecPhases {
				if !phases[phase] {
					continue
				}
				if err := o.runner.RunPhase(ctx, phase, tc, rec, t); errors.Is(err, ErrRunAborted) {
					if bar != nil {
						bar.Finish()
					}
					return ErrRunAborted
				}
			}
		}

		if caseHealthy(phases, rec) {
			passed++
		} else {
			failed++
		}
		if bar != nil {
			bar.Update(passed, failed)
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return nil
}

// resolveTester returns the memoized tester for a case, resolving it on
// first use.
func (o *Orchestrator) resolveTester(tc *domain.Context, testers map[string]tester.Tester) (tester.Tester, error) {
	if t, ok := testers[tc.CaseID]; ok {
		return t, nil
	}
	t, err := o.loader.Resolve(tc, o.testerEnv(tc))
	if err != nil {
		return nil, err
	}
	testers[tc.CaseID] = t
	return t, nil
}

// cleanupAll invokes the tester cleanup and best-effort removes the
// work directory of every case.
func (o *Orchestrator) cleanupAll(ctx context.Context, cases []*domain.Context, testers map[string]tester.Tester) {
	for _, tc := range cases {
		t, err := o.resolveTester(tc, testers)
		if err != nil {
			color.Yellow("warning: %s: cleanup skipped, tester resolution failed: %v", tc.CaseID, err)
		} else if err := t.Cleanup(ctx); err != nil {
			color.Yellow("warning: %s: tester cleanup failed: %v", tc.CaseID, err)
		}
		removeWorkDir(tc)
	}
}

// testerEnv merges the external context with the per-case paths handed
// to tester instantiation.
func (o *Orchestrator) testerEnv(tc *domain.Context) map[string]string {
	env := make(map[string]string, len(o.cfg.Vars)+4)
	for k, v := range o.cfg.Vars {
		env[k] = v
	}
	env["VSP_TESTROOT"] = tc.TestRoot
	env["VSP_TESTDIR"] = tc.TestDir
	env["VSP_WORKDIR"] = tc.WorkDir
	env["VSP_CASE"] = tc.CaseID
	return env
}

// patterns returns the inline patterns, falling back to the default
// when nothing selects test cases.
func (o *Orchestrator) patterns() []string {
	if len(o.cfg.Patterns) == 0 && len(o.cfg.PatternFiles) == 0 {
		return []string{config.DefaultPattern}
	}
	return o.cfg.Patterns
}

// removeWorkDir best-effort removes a case's work directory.
func removeWorkDir(tc *domain.Context) {
	if err := os.RemoveAll(tc.WorkDir); err != nil {
		color.Yellow("warning: %s: could not remove work dir: %v", tc.CaseID, err)
	}
}

// caseHealthy reports whether none of the requested execution phases
// ended in a negative terminal state.
func caseHealthy(phases map[domain.Phase]bool, rec *domain.Record) bool {
	for _, phase := range domain.ExecPhases {
		if !phases[phase] {
			continue
		}
		switch rec.StatusOf(phase) {
		case domain.StatusFailed, domain.StatusError, domain.StatusInterrupted:
			return false
		}
	}
	return true
}
