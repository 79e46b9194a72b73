package request

import (
	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/service"
)

// CreateDependencyRequest represents a request to create a dependency.
type CreateDependencyRequest struct {
	PredecessorTaskID string `json:"predecessorTaskId" validate:"required"`
	SuccessorTaskID   string `json:"successorTaskId" validate:"required"`
	DependencyType    string `json:"dependencyType" validate:"omitempty,oneof=FS SS FF SF"`
	LagTime           *int   `json:"lagTime" validate:"omitempty,min=0"`
	NotifyUsers       *bool  `json:"notifyUsers"`
}

// Validate validates the create dependency request.
func (r *CreateDependencyRequest) Validate() []string {
	errs := check(r)
	if r.PredecessorTaskID != "" && r.PredecessorTaskID == r.SuccessorTaskID {
		errs = append(errs, "A task cannot depend on itself")
	}
	return errs
}

// Input converts the request. notifyUsers defaults to true.
func (r *CreateDependencyRequest) Input() service.CreateDependencyInput {
	in := service.CreateDependencyInput{
		PredecessorTaskID: r.PredecessorTaskID,
		SuccessorTaskID:   r.SuccessorTaskID,
		Type:              domain.DependencyType(r.DependencyType),
		NotifyUsers:       true,
	}
	if r.LagTime != nil {
		in.LagTime = *r.LagTime
	}
	if r.NotifyUsers != nil {
		in.NotifyUsers = *r.NotifyUsers
	}
	return in
}

// UpdateDependencyRequest represents a partial update of a dependency.
type UpdateDependencyRequest struct {
	DependencyType *string `json:"dependencyType" validate:"omitempty,oneof=FS SS FF SF"`
	LagTime        *int    `json:"lagTime" validate:"omitempty,min=0"`
	IsActive       *bool   `json:"isActive"`
}

// Validate validates the update dependency request.
func (r *UpdateDependencyRequest) Validate() []string {
	errs := check(r)
	if r.DependencyType == nil && r.LagTime == nil && r.IsActive == nil {
		errs = append(errs, "at least one of dependencyType, lagTime, isActive is required")
	}
	return errs
}

// Input converts the request.
func (r *UpdateDependencyRequest) Input() service.UpdateDependencyInput {
	in := service.UpdateDependencyInput{LagTime: r.LagTime, IsActive: r.IsActive}
	if r.DependencyType != nil {
		t := domain.DependencyType(*r.DependencyType)
		in.Type = &t
	}
	return in
}

// ValidateTransitionRequest asks whether a task may move to a new status.
type ValidateTransitionRequest struct {
	NewStatus string `json:"newStatus" validate:"required,oneof=todo in_progress under_review done archived"`
}

// Validate validates the transition request.
func (r *ValidateTransitionRequest) Validate() []string {
	return check(r)
}

// CheckCircularRequest is a dry-run cycle check.
type CheckCircularRequest struct {
	PredecessorTaskID string `json:"predecessorTaskId" validate:"required"`
	SuccessorTaskID   string `json:"successorTaskId" validate:"required"`
}

// Validate validates the cycle check request.
func (r *CheckCircularRequest) Validate() []string {
	return check(r)
}
