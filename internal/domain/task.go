package domain

import (
	"time"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	StatusTodo        TaskStatus = "todo"
	StatusInProgress  TaskStatus = "in_progress"
	StatusUnderReview TaskStatus = "under_review"
	StatusDone        TaskStatus = "done"
	StatusArchived    TaskStatus = "archived"
)

// ValidStatuses contains all valid task status values.
var ValidStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusUnderReview, StatusDone, StatusArchived}

// IsValid checks if the status is a valid task status.
func (s TaskStatus) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Started reports whether work on the task has begun.
func (s TaskStatus) Started() bool {
	switch s {
	case StatusInProgress, StatusUnderReview, StatusDone, StatusArchived:
		return true
	}
	return false
}

// Finished reports whether the task is in a terminal state.
func (s TaskStatus) Finished() bool {
	return s == StatusDone || s == StatusArchived
}

// Task is the read model of a task owned by the tracker.
// The dependency core never mutates it.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     TaskStatus `json:"status"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedBy  string     `json:"created_by"`
	AssignedTo []string   `json:"assigned_to"`
	BoardID    *string    `json:"board_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Summary returns the minimal projection embedded in dependency reads.
func (t *Task) Summary() *TaskSummary {
	return &TaskSummary{
		ID:        t.ID,
		Title:     t.Title,
		Status:    t.Status,
		StartDate: t.StartDate,
		DueDate:   t.DueDate,
		CreatedBy: t.CreatedBy,
	}
}

// TaskSummary is the projection of a task joined onto a dependency.
type TaskSummary struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    TaskStatus `json:"status"`
	StartDate *time.Time `json:"start_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedBy string     `json:"created_by"`
}

// Board groups tasks and belongs to a project.
type Board struct {
	ID        string `json:"id" db:"id"`
	ProjectID string `json:"project_id" db:"project_id"`
	Name      string `json:"name" db:"name"`
}

// User is a notification recipient.
type User struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// UserSummary is the creator projection joined onto a dependency.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
