package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"vsp/internal/domain"
	"vsp/internal/tester"
)

// ScriptName is the user-supplied tester script inside a test case
// directory. When present it takes precedence over case.yaml.
const ScriptName = "testcase.go"

// Loader resolves exactly one Tester per test case per invocation.
type Loader struct{}

// NewLoader creates a new Loader
func NewLoader() *Loader {
	return &Loader{}
}

// Resolve returns the tester for a test case: the interpreted script
// when one exists, otherwise the builtin simple tester configured by
// case.yaml. env is the merged external context passed read-only to
// script functions.
func (l *Loader) Resolve(tc *domain.Context, env map[string]string) (tester.Tester, error) {
	script := filepath.Join(tc.TestDir, ScriptName)
	if _, err := os.Stat(script); err == nil {
		return loadScript(script, env)
	}
	cfg, err := tester.LoadCaseConfig(tc.TestDir)
	if err != nil {
		return nil, err
	}
	return tester.NewSimple(tc.TestDir, tc.WorkDir, cfg, tc.Log), nil
}

// Script function signatures. Prepare, Run, Test are required; Cleanup
// and RunFinished are optional (a script without RunFinished is treated
// as finishing synchronously with Run).
type (
	actionFunc = func(map[string]string) error
	pollFunc   = func(map[string]string) bool
	checkFunc  = func(map[string]string) (bool, error)
)

// loadScript evaluates a tester script and wraps its top-level
// functions into a Tester.
func loadScript(path string, env map[string]string) (tester.Tester, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("tester script %s: %w", path, err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("interpret tester script %s: %w", path, err)
	}

	st := &scriptTester{env: env}
	var err error
	if st.prepare, err = evalAction(i, path, "Prepare", true); err != nil {
		return nil, err
	}
	if st.run, err = evalAction(i, path, "Run", true); err != nil {
		return nil, err
	}
	if st.cleanup, err = evalAction(i, path, "Cleanup", false); err != nil {
		return nil, err
	}
	if st.runFinished, err = evalPoll(i, path, "RunFinished"); err != nil {
		return nil, err
	}
	if st.test, err = evalCheck(i, path, "Test"); err != nil {
		return nil, err
	}
	return st, nil
}

func evalAction(i *interp.Interpreter, path, name string, required bool) (actionFunc, error) {
	v, err := i.Eval(name)
	if err != nil {
		if required {
			return nil, fmt.Errorf("tester script %s must define %s(env map[string]string) error", path, name)
		}
		return nil, nil
	}
	fn, ok := v.Interface().(actionFunc)
	if !ok {
		return nil, fmt.Errorf("tester script %s: %s must have signature func(map[string]string) error", path, name)
	}
	return fn, nil
}

func evalPoll(i *interp.Interpreter, path, name string) (pollFunc, error) {
	v, err := i.Eval(name)
	if err != nil {
		return nil, nil
	}
	fn, ok := v.Interface().(pollFunc)
	if !ok {
		return nil, fmt.Errorf("tester script %s: %s must have signature func(map[string]string) bool", path, name)
	}
	return fn, nil
}

func evalCheck(i *interp.Interpreter, path, name string) (checkFunc, error) {
	v, err := i.Eval(name)
	if err != nil {
		return nil, fmt.Errorf("tester script %s must define %s(env map[string]string) (bool, error)", path, name)
	}
	fn, ok := v.Interface().(checkFunc)
	if !ok {
		return nil, fmt.Errorf("tester script %s: %s must have signature func(map[string]string) (bool, error)", path, name)
	}
	return fn, nil
}

// scriptTester adapts interpreted script functions to the Tester
// interface.
type scriptTester struct {
	env         map[string]string
	prepare     actionFunc
	run         actionFunc
	cleanup     actionFunc
	runFinished pollFunc
	test        checkFunc
}

func (t *scriptTester) Prepare(ctx context.Context) error { return t.prepare(t.env) }

func (t *scriptTester) Run(ctx context.Context) error { return t.run(t.env) }

func (t *scriptTester) RunFinished() bool {
	if t.runFinished == nil {
		return true
	}
	return t.runFinished(t.env)
}

func (t *scriptTester) Test(ctx context.Context) (bool, error) { return t.test(t.env) }

func (t *scriptTester) Cleanup(ctx context.Context) error {
	if t.cleanup == nil {
		return nil
	}
	return t.cleanup(t.env)
}
