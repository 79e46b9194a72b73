package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_IsValid(t *testing.T) {
	for _, s := range ValidStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, TaskStatus("in-progress").IsValid())
	assert.False(t, TaskStatus("").IsValid())
}

func TestTaskStatus_StartedFinished(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		started  bool
		finished bool
	}{
		{StatusTodo, false, false},
		{StatusInProgress, true, false},
		{StatusUnderReview, true, false},
		{StatusDone, true, true},
		{StatusArchived, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.started, tt.status.Started())
			assert.Equal(t, tt.finished, tt.status.Finished())
		})
	}
}

func TestTask_Summary(t *testing.T) {
	due := time.Now()
	task := &Task{ID: "tsk-1", Title: "Ship", Status: StatusDone, DueDate: &due, CreatedBy: "usr-1", AssignedTo: []string{"usr-2"}}

	s := task.Summary()
	assert.Equal(t, &TaskSummary{ID: "tsk-1", Title: "Ship", Status: StatusDone, DueDate: &due, CreatedBy: "usr-1"}, s)
}
