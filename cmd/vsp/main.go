package main

import (
	"fmt"
	"os"

	"vsp/internal/cli"
	"vsp/internal/cli/commands"
	"vsp/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "vsp",
		Short:   "Validation-run orchestrator for simulation packages",
		Long:    `vsp drives multi-phase validation runs for simulation test suites. For every selected test case it prepares an isolated work directory, runs the simulation, checks the outcome against reference data and reports the collected results, skipping phases that already succeeded in earlier invocations.`,
		Version: version,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
