package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vsp/internal/config"
	"vsp/internal/discovery"
)

// ListCommand handles the list command
type ListCommand struct {
	config   *config.Config
	resolver *discovery.Resolver
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, resolver *discovery.Resolver) *ListCommand {
	return &ListCommand{
		config:   cfg,
		resolver: resolver,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	ids, err := resolveSelection(lc.config, lc.resolver, args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		color.Yellow("No test cases found")
		return nil
	}

	color.Green("Found %d test case(s):\n", len(ids))
	for i, id := range ids {
		if i == len(ids)-1 {
			color.Cyan("└── %s", id)
		} else {
			color.Cyan("├── %s", id)
		}
	}
	return nil
}

// resolveSelection resolves the configured patterns, defaulting to
// every test case when nothing was selected.
func resolveSelection(cfg *config.Config, resolver *discovery.Resolver, inline []string) ([]string, error) {
	patterns := inline
	if len(patterns) == 0 && len(cfg.PatternFiles) == 0 {
		patterns = []string{config.DefaultPattern}
	}
	return resolver.Resolve(cfg.GetTestRoot(), cfg.PatternFiles, patterns)
}
