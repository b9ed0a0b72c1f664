package cli

import "vsp/internal/config"

// Flags holds command-line flags
type Flags struct {
	TestRoot     string
	WorkRoot     string
	Phases       string
	ReportFile   string
	PatternFiles []string
	Vars         []string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		TestRoot:     f.TestRoot,
		WorkRoot:     f.WorkRoot,
		Phases:       f.Phases,
		ReportFile:   f.ReportFile,
		PatternFiles: f.PatternFiles,
		Vars:         f.Vars,
	}
}
