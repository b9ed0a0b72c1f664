package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vsp/internal/config"
	"vsp/internal/discovery"
	"vsp/internal/domain"
	"vsp/internal/storage"
	"vsp/internal/ui"
)

// LogsCommand handles the logs command
type LogsCommand struct {
	config   *config.Config
	resolver *discovery.Resolver
	store    storage.Store
	viewer   *ui.LogViewer
}

// NewLogsCommand creates a new LogsCommand
func NewLogsCommand(cfg *config.Config, resolver *discovery.Resolver, store storage.Store, viewer *ui.LogViewer) *LogsCommand {
	return &LogsCommand{
		config:   cfg,
		resolver: resolver,
		store:    store,
		viewer:   viewer,
	}
}

// Execute runs the command
func (lc *LogsCommand) Execute(cmd *cobra.Command, args []string) error {
	ids, err := resolveSelection(lc.config, lc.resolver, args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		color.Yellow("No test cases found")
		return nil
	}

	cases := make([]*domain.Context, len(ids))
	records := make([]*domain.Record, len(ids))
	for i, id := range ids {
		cases[i] = domain.NewContext(lc.config.GetTestRoot(), lc.config.GetWorkRoot(), id, nil)
		records[i] = lc.store.Load(cases[i].StatusFile)
	}
	return lc.viewer.View(cases, records)
}
