package config

const (
	// DefaultTestRoot is the default directory containing the test cases
	DefaultTestRoot = "."
	// DefaultWorkRoot is the default root for per-case work directories
	DefaultWorkRoot = "_work"
	// DefaultPhases is the default phase selection (prepare, run, test, summary)
	DefaultPhases = "prts"
	// PatternFileComment starts a comment in pattern files
	PatternFileComment = "#"
	// DefaultPattern selects every test case when no pattern is given
	DefaultPattern = "*"
)
