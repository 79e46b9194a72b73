package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasktrack/tasktrack/pkg/client"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage task dependencies",
	Long:  `Commands for managing dependencies between tasks on a running server.`,
}

var depAddCmd = &cobra.Command{
	Use:   "add <predecessor> <successor>",
	Short: "Add a dependency",
	Long: `Add a dependency from the predecessor task to the successor task.

With the default type FS the successor cannot start until the predecessor
is done. SS, FF and SF relate start and finish the other ways round.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		depType, _ := cmd.Flags().GetString("type")
		lag, _ := cmd.Flags().GetInt("lag")
		quiet, _ := cmd.Flags().GetBool("no-notify")

		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		notifyUsers := !quiet
		dep, err := c.CreateDependency(context.Background(), client.CreateDependencyRequest{
			PredecessorTaskID: args[0],
			SuccessorTaskID:   args[1],
			DependencyType:    client.DependencyType(strings.ToUpper(depType)),
			LagTime:           lag,
			NotifyUsers:       &notifyUsers,
		})
		if err != nil {
			handleError(err)
		}

		printDependency(os.Stdout, dep, jsonOutput)
	},
}

var depRmCmd = &cobra.Command{
	Use:   "rm <dependency-id>",
	Short: "Remove a dependency",
	Long:  `Deactivate a dependency. Adding the same pair again reactivates it.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		if err := c.DeleteDependency(context.Background(), args[0]); err != nil {
			handleError(err)
		}

		printSuccess(os.Stdout, fmt.Sprintf("Removed dependency %s", args[0]), jsonOutput)
	},
}

var depListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List dependencies",
	Long:  `List the active dependencies of a task.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		direction, _ := cmd.Flags().GetString("direction")

		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		list, err := c.ListDependencies(context.Background(), args[0], direction)
		if err != nil {
			handleError(err)
		}

		printDependencies(os.Stdout, args[0], list, jsonOutput)
	},
}

var depCheckCmd = &cobra.Command{
	Use:   "check <predecessor> <successor>",
	Short: "Check whether a dependency would create a cycle",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		check, err := c.CheckCircular(context.Background(), args[0], args[1])
		if err != nil {
			handleError(err)
		}

		printCircular(os.Stdout, check, jsonOutput)
	},
}

var depChainCmd = &cobra.Command{
	Use:   "chain <task-id>",
	Short: "Show the dependency chain of a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		direction, _ := cmd.Flags().GetString("direction")

		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		chain, err := c.Chain(context.Background(), args[0], direction)
		if err != nil {
			handleError(err)
		}

		printChain(os.Stdout, args[0], chain, jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(depCmd)

	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRmCmd)
	depCmd.AddCommand(depListCmd)
	depCmd.AddCommand(depCheckCmd)
	depCmd.AddCommand(depChainCmd)

	depAddCmd.Flags().String("type", "FS", "Dependency type: FS, SS, FF or SF")
	depAddCmd.Flags().Int("lag", 0, "Lag time in hours")
	depAddCmd.Flags().Bool("no-notify", false, "Do not notify the people involved")
	depListCmd.Flags().String("direction", "both", "predecessor, successor or both")
	depChainCmd.Flags().String("direction", "forward", "forward or backward")
}
