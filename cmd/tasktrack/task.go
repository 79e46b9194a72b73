package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasktrack/tasktrack/pkg/client"
)

// errBlocked reports a status change refused by the dependency check.
var errBlocked = errors.New("transition blocked by dependencies")

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Register and move tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Register a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, _ := cmd.Flags().GetString("id")
		assignees, _ := cmd.Flags().GetStringSlice("assignee")
		board, _ := cmd.Flags().GetString("board")

		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		in := client.CreateTaskRequest{ID: id, Title: args[0], AssignedTo: assignees}
		if board != "" {
			in.BoardID = &board
		}
		task, err := c.CreateTask(context.Background(), in)
		if err != nil {
			handleError(err)
		}

		printTask(os.Stdout, task, jsonOutput)
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		task, err := c.GetTask(context.Background(), args[0])
		if err != nil {
			handleError(err)
		}

		printTask(os.Stdout, task, jsonOutput)
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change a task's status",
	Long: `Change a task's status after checking its dependencies.

The change is refused when an active dependency blocks it. Warnings are
printed but do not stop the change. Use --force to skip the check.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")

		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		task, err := setStatus(context.Background(), c, args[0], args[1], force)
		if err != nil {
			handleError(err)
		}

		printTask(os.Stdout, task, jsonOutput)
	},
}

func setStatus(ctx context.Context, c *client.Client, id, status string, force bool) (*client.Task, error) {
	if !force {
		check, err := c.ValidateTransition(ctx, id, status)
		if err != nil {
			return nil, err
		}
		printViolations(os.Stderr, check)
		if !check.Valid {
			return nil, fmt.Errorf("%w: %d violation(s)", errBlocked, len(check.Violations))
		}
	}
	return c.SetTaskStatus(ctx, id, status)
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskStatusCmd)

	taskAddCmd.Flags().String("id", "", "Task ID (default: generated)")
	taskAddCmd.Flags().StringSlice("assignee", nil, "Assigned user ID (repeatable)")
	taskAddCmd.Flags().String("board", "", "Board ID")
	taskStatusCmd.Flags().Bool("force", false, "Skip the dependency check")
}
