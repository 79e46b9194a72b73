package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tasktrack",
	Short: "Task dependency tracker",
	Long: `tasktrack validates and stores dependencies between tasks, blocks
status changes that would violate them, and notifies the people involved.`,
	SilenceUsage: true,
}

// Global flags
var (
	jsonOutput bool
	configPath string
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to tasktrack.toml (default: discovered upward from the working directory)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitGeneralError)
	}
}
