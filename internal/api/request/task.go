package request

import (
	"time"

	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/service"
)

// CreateTaskRequest registers a task.
type CreateTaskRequest struct {
	ID         string     `json:"id" validate:"omitempty,max=64"`
	Title      string     `json:"title" validate:"required"`
	Status     string     `json:"status" validate:"omitempty,oneof=todo in_progress under_review done archived"`
	StartDate  *time.Time `json:"startDate"`
	DueDate    *time.Time `json:"dueDate"`
	AssignedTo []string   `json:"assignedTo" validate:"omitempty,dive,required"`
	BoardID    *string    `json:"boardId"`
}

// Validate validates the create task request.
func (r *CreateTaskRequest) Validate() []string {
	return check(r)
}

// Input converts the request.
func (r *CreateTaskRequest) Input() service.CreateTaskInput {
	return service.CreateTaskInput{
		ID:         r.ID,
		Title:      r.Title,
		Status:     domain.TaskStatus(r.Status),
		StartDate:  r.StartDate,
		DueDate:    r.DueDate,
		AssignedTo: r.AssignedTo,
		BoardID:    r.BoardID,
	}
}

// UpdateTaskRequest patches a task.
type UpdateTaskRequest struct {
	Title      *string    `json:"title" validate:"omitempty,min=1"`
	Status     *string    `json:"status" validate:"omitempty,oneof=todo in_progress under_review done archived"`
	StartDate  *time.Time `json:"startDate"`
	DueDate    *time.Time `json:"dueDate"`
	AssignedTo []string   `json:"assignedTo" validate:"omitempty,dive,required"`
	BoardID    *string    `json:"boardId"`
}

// Validate validates the update task request.
func (r *UpdateTaskRequest) Validate() []string {
	errs := check(r)
	if r.Title != nil && *r.Title == "" {
		errs = append(errs, "title cannot be empty")
	}
	return errs
}

// Input converts the request.
func (r *UpdateTaskRequest) Input() service.UpdateTaskInput {
	in := service.UpdateTaskInput{
		Title:      r.Title,
		StartDate:  r.StartDate,
		DueDate:    r.DueDate,
		AssignedTo: r.AssignedTo,
		BoardID:    r.BoardID,
	}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		in.Status = &s
	}
	return in
}

// UserRequest registers or updates a user.
type UserRequest struct {
	ID    string `json:"id" validate:"required,max=64"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// Validate validates the user request.
func (r *UserRequest) Validate() []string {
	return check(r)
}

// BoardRequest creates a board.
type BoardRequest struct {
	ID        string `json:"id" validate:"required,max=64"`
	ProjectID string `json:"projectId" validate:"required,max=64"`
	Name      string `json:"name" validate:"required"`
}

// Validate validates the board request.
func (r *BoardRequest) Validate() []string {
	return check(r)
}
