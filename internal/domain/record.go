package domain

// Record is the persisted per-test-case state: one status per execution
// phase plus the log text captured during the test case's lifetime. It
// is the authoritative answer to "has this phase already succeeded".
type Record struct {
	Log    string           `json:"log"`
	Status map[Phase]Status `json:"status"`
}

// NewRecord returns a fresh record with every execution phase NotRun
// and an empty log.
func NewRecord() *Record {
	rec := &Record{Status: make(map[Phase]Status, len(ExecPhases))}
	for _, phase := range ExecPhases {
		rec.Status[phase] = StatusNotRun
	}
	return rec
}

// StatusOf returns the status of the given phase, NotRun when the phase
// was never recorded (e.g. loaded from a partial file).
func (r *Record) StatusOf(phase Phase) Status {
	if s, ok := r.Status[phase]; ok {
		return s
	}
	return StatusNotRun
}

// SetStatus records the outcome of a phase attempt.
func (r *Record) SetStatus(phase Phase, status Status) {
	if r.Status == nil {
		r.Status = make(map[Phase]Status, len(ExecPhases))
	}
	r.Status[phase] = status
}

// Normalize replaces missing or unknown statuses with NotRun so that a
// partially corrupt file degrades instead of poisoning gating decisions.
func (r *Record) Normalize() {
	if r.Status == nil {
		r.Status = make(map[Phase]Status, len(ExecPhases))
	}
	for _, phase := range ExecPhases {
		if !ValidStatus(r.Status[phase]) {
			r.Status[phase] = StatusNotRun
		}
	}
}
