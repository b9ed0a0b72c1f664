package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Root directory containing the test cases
	TestRoot string
	// Root under which per-case work directories are created
	WorkRoot string
	// Phase selection letters (see domain.PhasesFromLetters)
	Phases string
	// Optional file receiving the detailed report
	ReportFile string
	// Files containing test-name patterns
	PatternFiles []string
	// Inline test-name patterns (command arguments)
	Patterns []string
	// External context passed read-only into every tester instantiation
	Vars map[string]string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	TestRoot     string
	WorkRoot     string
	Phases       string
	ReportFile   string
	PatternFiles []string
	Vars         []string
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		TestRoot: DefaultTestRoot,
		WorkRoot: DefaultWorkRoot,
		Phases:   DefaultPhases,
		Vars:     make(map[string]string),
	}
}

// Apply copies flag overrides into the config.
func (c *Config) Apply(flags Flags) error {
	c.Flags = flags
	if flags.TestRoot != "" {
		c.TestRoot = flags.TestRoot
	}
	if flags.WorkRoot != "" {
		c.WorkRoot = flags.WorkRoot
	}
	if flags.Phases != "" {
		c.Phases = flags.Phases
	}
	c.ReportFile = flags.ReportFile
	c.PatternFiles = flags.PatternFiles
	vars, err := ParseVars(flags.Vars)
	if err != nil {
		return err
	}
	c.Vars = vars
	return nil
}

// GetTestRoot returns the absolute test root so identifiers stay stable
// regardless of cwd.
func (c *Config) GetTestRoot() string {
	if abs, err := filepath.Abs(c.TestRoot); err == nil {
		return abs
	}
	return c.TestRoot
}

// GetWorkRoot returns the absolute work root.
func (c *Config) GetWorkRoot() string {
	if abs, err := filepath.Abs(c.WorkRoot); err == nil {
		return abs
	}
	return c.WorkRoot
}

// ParseVars splits user-supplied key=value strings into the external
// context mapping.
func ParseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid context variable %q, expected key=value", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
