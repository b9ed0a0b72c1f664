package commands

import (
	"vsp/internal/cli"
	"vsp/internal/config"
	"vsp/internal/discovery"
	"vsp/internal/history"
	"vsp/internal/plugin"
	"vsp/internal/report"
	"vsp/internal/storage"
	"vsp/internal/ui"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Run  *RunCommand
	List *ListCommand
	Logs *LogsCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	resolver := discovery.NewResolver()
	store := storage.NewJSONStore()
	loader := plugin.NewLoader()
	reporter := report.NewAggregator(store)
	recorder := history.NewRecorder(cfg, store)
	viewer := ui.NewLogViewer()

	return &Commands{
		Run:  NewRunCommand(cfg, resolver, store, loader, reporter, recorder),
		List: NewListCommand(cfg, resolver),
		Logs: NewLogsCommand(cfg, resolver, store, viewer),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	// Run command
	runCmd := &cobra.Command{
		Use:   "run [patterns...]",
		Short: "Execute validation test cases",
		Long:  "Resolve the selected test cases and drive the requested phases (prepare, run, test, summary, cleanup) for each of them",
		RunE:  c.Run.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Apply(flags.ToConfigFlags())
		},
	}
	addSelectionFlags(runCmd, flags)
	runCmd.Flags().StringVar(&flags.Phases, "phases", "", "Phase letters to execute: p=prepare, r=run, t=test, s=summary, c=cleanup (default prts)")
	runCmd.Flags().StringVar(&flags.ReportFile, "report-file", "", "Write the detailed report to this file instead of the console (gzip when it ends in .gz)")
	runCmd.Flags().StringArrayVar(&flags.Vars, "var", nil, "Context variable key=value passed to every tester (repeatable)")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list [patterns...]",
		Short: "List resolved test cases",
		Long:  "Resolve and print the selected test case identifiers without executing anything",
		RunE:  c.List.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Apply(flags.ToConfigFlags())
		},
	}
	addSelectionFlags(listCmd, flags)
	rootCmd.AddCommand(listCmd)

	// Logs command
	logsCmd := &cobra.Command{
		Use:   "logs [patterns...]",
		Short: "Browse captured test case logs",
		Long:  "Open an interactive viewer over the persisted phase statuses and logs of the selected test cases",
		RunE:  c.Logs.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Apply(flags.ToConfigFlags())
		},
	}
	addSelectionFlags(logsCmd, flags)
	rootCmd.AddCommand(logsCmd)
}

// addSelectionFlags registers the test-case selection flags shared by
// all commands.
func addSelectionFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVarP(&flags.TestRoot, "test-root", "d", "", "Directory containing the test cases (default .)")
	cmd.Flags().StringVarP(&flags.WorkRoot, "work-root", "w", "", "Root for per-case work directories (default _work)")
	cmd.Flags().StringArrayVarP(&flags.PatternFiles, "pattern-file", "f", nil, "File with test-name patterns, one per line, # starts a comment (repeatable)")
}
