package graph

import (
	"fmt"
	"time"

	"github.com/tasktrack/tasktrack/internal/domain"
)

// EvaluateTransition checks a proposed status for task against every edge
// touching it. Inactive edges and edges without loaded task projections are
// ignored. Lag conflicts produce warnings, never violations.
func EvaluateTransition(task *domain.Task, newStatus domain.TaskStatus, deps []*domain.Dependency) domain.TransitionCheck {
	check := domain.TransitionCheck{
		Valid:      true,
		Violations: []domain.Violation{},
		Warnings:   []domain.Warning{},
	}

	for _, dep := range deps {
		if !dep.IsActive {
			continue
		}
		switch task.ID {
		case dep.SuccessorTaskID:
			pred := dep.PredecessorTask
			if pred == nil {
				continue
			}
			if !domain.CanProceed(pred.Status, newStatus, dep.Type) {
				check.Violations = append(check.Violations, domain.NewViolation(dep, pred, true))
			}
			if expected, conflict := domain.LagConflict(pred.DueDate, task.StartDate, dep.LagTime); conflict {
				check.Warnings = append(check.Warnings, domain.Warning{
					Dependency: dep,
					Message: fmt.Sprintf("Scheduling conflict: %q is due %s; with %dh lag this task should start no earlier than %s.",
						pred.Title, pred.DueDate.Format(time.RFC3339), dep.LagTime, expected.Format(time.RFC3339)),
				})
			}
		case dep.PredecessorTaskID:
			succ := dep.SuccessorTask
			if succ == nil {
				continue
			}
			if !domain.CanProceed(newStatus, succ.Status, dep.Type) {
				check.Violations = append(check.Violations, domain.NewViolation(dep, succ, false))
			}
			if expected, conflict := domain.LagConflict(task.DueDate, succ.StartDate, dep.LagTime); conflict {
				check.Warnings = append(check.Warnings, domain.Warning{
					Dependency: dep,
					Message: fmt.Sprintf("Scheduling conflict: successor %q starts before %s.",
						succ.Title, expected.Format(time.RFC3339)),
				})
			}
		}
	}

	check.Valid = len(check.Violations) == 0
	return check
}
