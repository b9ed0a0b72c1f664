package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vsp/internal/config"
	"vsp/internal/discovery"
	"vsp/internal/execution"
	"vsp/internal/storage"
)

// RunCommand handles the run command
type RunCommand struct {
	config   *config.Config
	resolver *discovery.Resolver
	store    storage.Store
	loader   execution.TesterLoader
	reporter execution.Reporter
	history  execution.HistorySink
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	resolver *discovery.Resolver,
	store storage.Store,
	loader execution.TesterLoader,
	reporter execution.Reporter,
	history execution.HistorySink,
) *RunCommand {
	return &RunCommand{
		config:   cfg,
		resolver: resolver,
		store:    store,
		loader:   loader,
		reporter: reporter,
		history:  history,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	rc.config.Patterns = args

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	runner := execution.NewPhaseRunner(rc.store, sigCh)
	orch := execution.NewOrchestrator(rc.config, rc.resolver, rc.store, rc.loader,
		runner, rc.reporter, rc.history, cmd.OutOrStdout(), true)

	return orch.Run(cmd.Context())
}
