package domain

import "fmt"

// Phase names one stage of a test case's lifecycle.
type Phase string

const (
	PhasePrepare Phase = "prepare"
	PhaseRun     Phase = "run"
	PhaseCheck   Phase = "check"
	PhaseReport  Phase = "report"
	PhaseCleanup Phase = "cleanup"
)

// ExecPhases are the phases whose outcome is persisted, in the fixed
// order they are executed.
var ExecPhases = []Phase{PhasePrepare, PhaseRun, PhaseCheck}

// Status classifies the outcome of a phase attempt.
type Status string

const (
	StatusNotRun      Status = "notrun"
	StatusOk          Status = "ok"
	StatusFailed      Status = "failed"
	StatusError       Status = "error"
	StatusInterrupted Status = "interrupted"
)

// Display returns the form shown in summary tables.
func (s Status) Display() string {
	switch s {
	case StatusOk:
		return "OK"
	case StatusFailed:
		return "FAILED"
	case StatusError:
		return "Error"
	case StatusInterrupted:
		return "Interrupted"
	case StatusNotRun:
		return "Not run"
	}
	return "Unknown"
}

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNotRun, StatusOk, StatusFailed, StatusError, StatusInterrupted:
		return true
	}
	return false
}

// PhasesFromLetters parses a phase selection string, one letter per
// phase: p=prepare, r=run, t=test (check), s=summary (report),
// c=cleanup.
func PhasesFromLetters(letters string) (map[Phase]bool, error) {
	phases := make(map[Phase]bool)
	for _, r := range letters {
		switch r {
		case 'p':
			phases[PhasePrepare] = true
		case 'r':
			phases[PhaseRun] = true
		case 't':
			phases[PhaseCheck] = true
		case 's':
			phases[PhaseReport] = true
		case 'c':
			phases[PhaseCleanup] = true
		default:
			return nil, fmt.Errorf("unknown phase letter %q", string(r))
		}
	}
	return phases, nil
}
