package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgPath   string
	inputPath string
	verbose   bool
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "cascadesim",
	Short:   "Cascading-failure simulation engine",
	Long:    `cascadesim models a service dependency graph under randomized glitches, propagated degradation, and cooldown-based recovery, and answers diagnostic queries about the resulting incidents.`,
	Version: version,
	// Running the root command with no subcommand behaves like "run",
	// matching the teacher's single-verb CLI shape.
	RunE: runSimulation,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&inputPath, "input", "services.json", "topology input file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
}
