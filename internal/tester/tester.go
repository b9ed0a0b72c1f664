package tester

import "context"

// Tester is the per-test-case lifecycle consumed by the engine. It is
// implemented either by a user script (see internal/plugin) or by the
// builtin Simple tester.
//
// Prepare, Run and Cleanup return an error to signal failure. Test
// returns a boolean pass/fail for a normal failed comparison; its error
// is reserved for infrastructure problems during checking. RunFinished
// must be non-blocking and side-effect-free: it is polled to decide
// whether the check phase is eligible yet, independently of the run
// phase's own status bookkeeping (a run may return control after
// submitting an external job before the work is complete).
type Tester interface {
	Prepare(ctx context.Context) error
	Run(ctx context.Context) error
	RunFinished() bool
	Test(ctx context.Context) (bool, error)
	Cleanup(ctx context.Context) error
}
