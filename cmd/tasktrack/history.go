package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var depHistoryCmd = &cobra.Command{
	Use:   "history <dependency-id>",
	Short: "Show dependency history",
	Long:  `Display the audit trail of a dependency, oldest change first.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		entries, err := c.GetDependencyHistory(context.Background(), args[0])
		if err != nil {
			handleError(err)
		}

		printHistory(os.Stdout, entries, jsonOutput)
	},
}

func init() {
	depCmd.AddCommand(depHistoryCmd)
}
