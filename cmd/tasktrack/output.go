package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tasktrack/tasktrack/internal/notify"
	"github.com/tasktrack/tasktrack/pkg/client"
)

func printJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// printDependency prints a single dependency
func printDependency(w io.Writer, dep *client.Dependency, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, dep)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", dep.ID)
	fmt.Fprintf(tw, "Predecessor:\t%s\n", taskLabel(dep.PredecessorTaskID, dep.PredecessorTask))
	fmt.Fprintf(tw, "Successor:\t%s\n", taskLabel(dep.SuccessorTaskID, dep.SuccessorTask))
	fmt.Fprintf(tw, "Type:\t%s\n", dep.Type)
	fmt.Fprintf(tw, "Lag:\t%dh\n", dep.LagTime)
	fmt.Fprintf(tw, "Active:\t%t\n", dep.IsActive)
	fmt.Fprintf(tw, "Created:\t%s\n", dep.CreatedAt.Format("2006-01-02 15:04:05"))
	tw.Flush()
}

// printDependencies prints the edges touching a task
func printDependencies(w io.Writer, taskID string, list *client.DependencyList, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, list)
		return
	}

	if len(list.Dependencies) == 0 {
		fmt.Fprintf(w, "Task %s has no dependencies\n", taskID)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tRELATION\tTASK\tTYPE\tLAG\n")
	fmt.Fprintf(tw, "--\t--------\t----\t----\t---\n")
	for _, dep := range list.Dependencies {
		if dep.SuccessorTaskID == taskID {
			fmt.Fprintf(tw, "%s\tdepends on\t%s\t%s\t%dh\n", dep.ID, taskLabel(dep.PredecessorTaskID, dep.PredecessorTask), dep.Type, dep.LagTime)
		} else {
			fmt.Fprintf(tw, "%s\tblocks\t%s\t%s\t%dh\n", dep.ID, taskLabel(dep.SuccessorTaskID, dep.SuccessorTask), dep.Type, dep.LagTime)
		}
	}
	tw.Flush()
}

// printChain prints a dependency chain as edges in walk order
func printChain(w io.Writer, taskID string, chain []client.Dependency, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, chain)
		return
	}

	if len(chain) == 0 {
		fmt.Fprintf(w, "Task %s has no dependency chain\n", taskID)
		return
	}

	for _, dep := range chain {
		fmt.Fprintf(w, "%s -[%s]-> %s\n", dep.PredecessorTaskID, dep.Type, dep.SuccessorTaskID)
	}
}

// printCircular prints a cycle check result
func printCircular(w io.Writer, check *client.CircularCheck, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, check)
		return
	}

	switch {
	case check.Error != "":
		fmt.Fprintf(w, "Cycle check failed: %s\n", check.Error)
	case check.HasCircular:
		fmt.Fprintf(w, "Would create a cycle: %s\n", strings.Join(check.Path, " -> "))
	default:
		fmt.Fprintln(w, "No cycle")
	}
}

// printSweep prints the outcome of one sweep pass
func printSweep(w io.Writer, res notify.SweepResult, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, res)
		return
	}

	fmt.Fprintf(w, "Picked %d, delivered %d, retried %d, failed %d, skipped %d\n",
		res.Picked, res.Delivered, res.Retried, res.Failed, res.Skipped)
}

// printTask prints a single task
func printTask(w io.Writer, task *client.Task, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, task)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", task.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", task.Title)
	fmt.Fprintf(tw, "Status:\t%s\n", task.Status)
	if len(task.AssignedTo) > 0 {
		fmt.Fprintf(tw, "Assigned To:\t%s\n", strings.Join(task.AssignedTo, ", "))
	}
	if task.BoardID != nil {
		fmt.Fprintf(tw, "Board:\t%s\n", *task.BoardID)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", task.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tw, "Updated:\t%s\n", task.UpdatedAt.Format("2006-01-02 15:04:05"))
	tw.Flush()
}

// printViolations prints blocking violations and warnings of a transition check
func printViolations(w io.Writer, check *client.TransitionCheck) {
	for _, v := range check.Violations {
		fmt.Fprintf(w, "blocked: %s\n", v.Message)
	}
	for _, v := range check.Warnings {
		fmt.Fprintf(w, "warning: %s\n", v.Message)
	}
}

// printHistory prints dependency audit entries
func printHistory(w io.Writer, entries []client.AuditEntry, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, entries)
		return
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No history found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TIME\tACTION\tFIELD\tOLD\tNEW\tBY\n")
	fmt.Fprintf(tw, "----\t------\t-----\t---\t---\t--\n")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.ChangedAt.Format("2006-01-02 15:04:05"),
			entry.Action,
			deref(entry.Field, 0),
			deref(entry.OldValue, 20),
			deref(entry.NewValue, 20),
			truncate(entry.ChangedBy, 30))
	}
	tw.Flush()
}

func deref(s *string, maxLen int) string {
	if s == nil {
		return ""
	}
	if maxLen > 0 {
		return truncate(*s, maxLen)
	}
	return *s
}

// printError prints an error message
func printError(w io.Writer, err error, jsonOutput bool) {
	if jsonOutput {
		body := map[string]interface{}{"message": err.Error()}
		if apiErr, ok := err.(*client.Error); ok {
			body["code"] = apiErr.Code
			if len(apiErr.Context) > 0 {
				body["context"] = apiErr.Context
			}
		}
		printJSON(w, map[string]interface{}{"error": body})
		return
	}

	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, map[string]interface{}{"message": message})
		return
	}

	fmt.Fprintln(w, message)
}

func taskLabel(id string, summary *client.TaskSummary) string {
	if summary == nil || summary.Title == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", id, truncate(summary.Title, 40))
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
