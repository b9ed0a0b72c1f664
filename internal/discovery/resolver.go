package discovery

import (
	"fmt"
	"os"
	"path/filepath"

	"vsp/internal/config"
	"vsp/internal/fileio"
)

// Resolver expands test-name patterns into a deduplicated,
// order-preserving list of test case identifiers relative to the test
// root.
type Resolver struct{}

// NewResolver creates a new Resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve reads the pattern files line by line (comments and blank
// lines skipped), appends the inline patterns, and globs every pattern
// against the test root. Each matching directory becomes one
// identifier, kept at the position of its first match. A pattern
// without matches contributes nothing.
func (r *Resolver) Resolve(testRoot string, patternFiles, inline []string) ([]string, error) {
	info, err := os.Stat(testRoot)
	if err != nil {
		return nil, fmt.Errorf("test root does not exist: %s", testRoot)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test root is not a directory: %s", testRoot)
	}

	var patterns []string
	for _, file := range patternFiles {
		lines, err := fileio.ReadLinesFile(file, config.PatternFileComment)
		if err != nil {
			return nil, fmt.Errorf("read pattern file %s: %w", file, err)
		}
		patterns = append(patterns, lines...)
	}
	patterns = append(patterns, inline...)

	seen := make(map[string]bool)
	var ids []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(testRoot, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(testRoot, match)
			if err != nil {
				continue
			}
			id := filepath.ToSlash(rel)
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
