package domain

import (
	"fmt"
	"time"
)

// DependencyType is the scheduling relation between two tasks.
type DependencyType string

const (
	FinishToStart  DependencyType = "FS"
	StartToStart   DependencyType = "SS"
	FinishToFinish DependencyType = "FF"
	StartToFinish  DependencyType = "SF"
)

// ValidDependencyTypes contains all valid dependency type codes.
var ValidDependencyTypes = []DependencyType{FinishToStart, StartToStart, FinishToFinish, StartToFinish}

// IsValid checks if the type is one of the four scheduling relations.
func (t DependencyType) IsValid() bool {
	for _, v := range ValidDependencyTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Description returns the long name of the relation.
func (t DependencyType) Description() string {
	switch t {
	case FinishToStart:
		return "Finish-to-Start"
	case StartToStart:
		return "Start-to-Start"
	case FinishToFinish:
		return "Finish-to-Finish"
	case StartToFinish:
		return "Start-to-Finish"
	default:
		return string(t)
	}
}

// Direction selects which edges of a task are listed.
type Direction string

const (
	DirectionPredecessor Direction = "predecessor"
	DirectionSuccessor   Direction = "successor"
	DirectionBoth        Direction = "both"
)

// IsValid checks if the direction is a valid listing direction.
func (d Direction) IsValid() bool {
	return d == DirectionPredecessor || d == DirectionSuccessor || d == DirectionBoth
}

// ChainDirection selects which way a dependency chain is walked.
type ChainDirection string

const (
	ChainForward  ChainDirection = "forward"
	ChainBackward ChainDirection = "backward"
)

// IsValid checks if the chain direction is valid.
func (d ChainDirection) IsValid() bool {
	return d == ChainForward || d == ChainBackward
}

// Dependency is a directed edge from a predecessor task to a successor task.
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

	PredecessorTask *TaskSummary `json:"predecessor_task,omitempty"`
	SuccessorTask   *TaskSummary `json:"successor_task,omitempty"`
	Creator         *UserSummary `json:"creator,omitempty"`
}

// CanProceed reports whether a successor in successorStatus is allowed given
// the predecessor's status and the relation. It is pure.
//
//	FS: the successor may start only once the predecessor has finished.
//	SS: the successor may start only once the predecessor has started.
//	FF: the successor may finish only once the predecessor has finished.
//	SF: the successor may finish only once the predecessor has started.
func CanProceed(predecessorStatus, successorStatus TaskStatus, depType DependencyType) bool {
	switch depType {
	case FinishToStart:
		return !successorStatus.Started() || predecessorStatus.Finished()
	case StartToStart:
		return !successorStatus.Started() || predecessorStatus.Started()
	case FinishToFinish:
		return !successorStatus.Finished() || predecessorStatus.Finished()
	case StartToFinish:
		return !successorStatus.Finished() || predecessorStatus.Started()
	default:
		return false
	}
}

// RequiredPredecessorState names what the predecessor must reach for the relation.
func RequiredPredecessorState(depType DependencyType) string {
	switch depType {
	case FinishToStart, FinishToFinish:
		return "completed"
	default:
		return "started"
	}
}

// LagConflict returns the earliest allowed successor start and whether the
// successor's planned start is before it. Missing dates never conflict.
func LagConflict(predecessorDue, successorStart *time.Time, lagHours int) (time.Time, bool) {
	if predecessorDue == nil || successorStart == nil {
		return time.Time{}, false
	}
	expected := predecessorDue.Add(time.Duration(lagHours) * time.Hour)
	return expected, expected.After(*successorStart)
}

// Violation is a dependency that blocks a status transition.
type Violation struct {
	Dependency *Dependency `json:"dependency"`
	Message    string      `json:"message"`
}

// Warning is an advisory scheduling conflict.
type Warning struct {
	Dependency *Dependency `json:"dependency"`
	Message    string      `json:"message"`
}

// TransitionCheck is the result of evaluating a status change against
// every active dependency touching a task.
type TransitionCheck struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
	Warnings   []Warning   `json:"warnings"`
}

// NewViolation builds the message for a blocked transition.
func NewViolation(dep *Dependency, blocking *TaskSummary, asSuccessor bool) Violation {
	var msg string
	if asSuccessor {
		msg = fmt.Sprintf("Cannot move this task. %q must be %s first (%s).",
			blocking.Title, RequiredPredecessorState(dep.Type), dep.Type.Description())
	} else {
		msg = fmt.Sprintf("Cannot move this task. Successor %q already depends on it (%s).",
			blocking.Title, dep.Type.Description())
	}
	return Violation{Dependency: dep, Message: msg}
}
