package notify

import (
	"fmt"

	"github.com/tasktrack/tasktrack/internal/domain"
)

// ContentOverride replaces parts of the generated content.
type ContentOverride struct {
	Subject string         `json:"subject,omitempty"`
	Text    string         `json:"body,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// buildContent renders subject and text for the notification type and
// snapshots the dependency and both tasks.
func buildContent(t domain.NotificationType, dep *domain.Dependency, pred, succ *domain.Task, override *ContentOverride) domain.Content {
	var subject, text string
	switch t {
	case domain.NotificationCreated:
		subject = "New Task Dependency Created"
		text = fmt.Sprintf("A new %s dependency has been created between %q and %q.", dep.Type, pred.Title, succ.Title)
	case domain.NotificationUpdated:
		subject = "Task Dependency Updated"
		text = fmt.Sprintf("The %s dependency between %q and %q has been updated.", dep.Type, pred.Title, succ.Title)
	case domain.NotificationRemoved:
		subject = "Task Dependency Removed"
		text = fmt.Sprintf("The %s dependency between %q and %q has been removed.", dep.Type, pred.Title, succ.Title)
	case domain.NotificationCompleted:
		subject = "Predecessor Task Completed"
		text = fmt.Sprintf("Task %q has been completed. You can now proceed with %q.", pred.Title, succ.Title)
	default:
		subject = "Task Dependency Update"
		text = "A task dependency has been updated."
	}

	content := domain.Content{
		Subject: subject,
		Title:   subject,
		Text:    text,
		Data: domain.ContentSnapshot{
			Dependency: domain.DependencySnapshot{
				ID:      dep.ID,
				Type:    dep.Type,
				LagTime: dep.LagTime,
			},
			PredecessorTask: snapshotTask(pred),
			SuccessorTask:   snapshotTask(succ),
		},
	}

	if override != nil {
		if override.Subject != "" {
			content.Subject = override.Subject
			content.Title = override.Subject
		}
		if override.Text != "" {
			content.Text = override.Text
		}
		if len(override.Data) > 0 {
			content.Data.Extra = override.Data
		}
	}
	return content
}

func snapshotTask(t *domain.Task) domain.TaskSnapshot {
	return domain.TaskSnapshot{
		ID:      t.ID,
		Title:   t.Title,
		Status:  t.Status,
		BoardID: t.BoardID,
	}
}
