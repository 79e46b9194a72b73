package client

import "time"

// DependencyType is the relation between two tasks.
type DependencyType string

const (
	FinishToStart  DependencyType = "FS"
	StartToStart   DependencyType = "SS"
	FinishToFinish DependencyType = "FF"
	StartToFinish  DependencyType = "SF"
)

// TaskSummary is the task projection embedded in a dependency.
type TaskSummary struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"start_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedBy string     `json:"created_by"`
}

// Dependency is a directed edge between two tasks.
type Dependency struct {
	ID                string         `json:"id"`
	PredecessorTaskID string         `json:"predecessor_task_id"`
	SuccessorTaskID   string         `json:"successor_task_id"`
	Type              DependencyType `json:"dependency_type"`
	LagTime           int            `json:"lag_time"`
	IsActive          bool           `json:"is_active"`
	CreatedBy         string         `json:"created_by"`
	UpdatedBy         string         `json:"updated_by"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	PredecessorTask   *TaskSummary   `json:"predecessor_task,omitempty"`
	SuccessorTask     *TaskSummary   `json:"successor_task,omitempty"`
}

// DependencyList is a task's dependency listing.
type DependencyList struct {
	Dependencies []Dependency `json:"dependencies"`
	FromCache    bool         `json:"fromCache"`
}

// CircularCheck is the result of a dry-run cycle check.
type CircularCheck struct {
	HasCircular bool     `json:"hasCircular"`
	Path        []string `json:"path,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Violation blocks a status transition.
type Violation struct {
	Dependency *Dependency `json:"dependency"`
	Message    string      `json:"message"`
}

// TransitionCheck is the verdict on a proposed status change.
type TransitionCheck struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
	Warnings   []Violation `json:"warnings"`
}

// CreateDependencyRequest creates an edge. NotifyUsers nil means true.
type CreateDependencyRequest struct {
	PredecessorTaskID string         `json:"predecessorTaskId"`
	SuccessorTaskID   string         `json:"successorTaskId"`
	DependencyType    DependencyType `json:"dependencyType,omitempty"`
	LagTime           int            `json:"lagTime,omitempty"`
	NotifyUsers       *bool          `json:"notifyUsers,omitempty"`
}

// Task is a task as registered with the tracker.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedBy  string     `json:"created_by"`
	AssignedTo []string   `json:"assigned_to"`
	BoardID    *string    `json:"board_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CreateTaskRequest registers a task. An empty ID lets the server generate one.
type CreateTaskRequest struct {
	ID         string   `json:"id,omitempty"`
	Title      string   `json:"title"`
	Status     string   `json:"status,omitempty"`
	AssignedTo []string `json:"assignedTo,omitempty"`
	BoardID    *string  `json:"boardId,omitempty"`
}

// AuditEntry is one recorded change to a dependency.
type AuditEntry struct {
	ID           int64     `json:"id"`
	DependencyID string    `json:"dependency_id"`
	Action       string    `json:"action"`
	Field        *string   `json:"field,omitempty"`
	OldValue     *string   `json:"old_value,omitempty"`
	NewValue     *string   `json:"new_value,omitempty"`
	ChangedAt    time.Time `json:"changed_at"`
	ChangedBy    string    `json:"changed_by"`
}
