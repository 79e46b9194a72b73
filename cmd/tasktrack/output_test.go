package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/pkg/client"
)

func sampleList() *client.DependencyList {
	return &client.DependencyList{Dependencies: []client.Dependency{
		{ID: "dep-1", PredecessorTaskID: "tsk-a", SuccessorTaskID: "tsk-b", Type: client.FinishToStart,
			PredecessorTask: &client.TaskSummary{ID: "tsk-a", Title: "Design"}},
		{ID: "dep-2", PredecessorTaskID: "tsk-b", SuccessorTaskID: "tsk-c", Type: client.StartToStart, LagTime: 4},
	}}
}

func TestPrintDependencies_Table(t *testing.T) {
	var buf bytes.Buffer
	printDependencies(&buf, "tsk-b", sampleList(), false)

	out := buf.String()
	assert.Contains(t, out, "depends on")
	assert.Contains(t, out, "tsk-a (Design)")
	assert.Contains(t, out, "blocks")
	assert.Contains(t, out, "4h")
}

func TestPrintDependencies_Empty(t *testing.T) {
	var buf bytes.Buffer
	printDependencies(&buf, "tsk-z", &client.DependencyList{}, false)
	assert.Equal(t, "Task tsk-z has no dependencies\n", buf.String())
}

func TestPrintDependencies_JSON(t *testing.T) {
	var buf bytes.Buffer
	printDependencies(&buf, "tsk-b", sampleList(), true)

	var got client.DependencyList
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got.Dependencies, 2)
}

func TestPrintCircular(t *testing.T) {
	var buf bytes.Buffer
	printCircular(&buf, &client.CircularCheck{HasCircular: true, Path: []string{"a", "b", "a"}}, false)
	assert.Equal(t, "Would create a cycle: a -> b -> a\n", buf.String())

	buf.Reset()
	printCircular(&buf, &client.CircularCheck{}, false)
	assert.Equal(t, "No cycle\n", buf.String())
}

func TestPrintChain(t *testing.T) {
	var buf bytes.Buffer
	printChain(&buf, "tsk-a", sampleList().Dependencies, false)
	assert.Equal(t, "tsk-a -[FS]-> tsk-b\ntsk-b -[SS]-> tsk-c\n", buf.String())
}

func TestPrintError_JSONIncludesCode(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, &client.Error{Code: client.ErrCodeCycleDetected, Message: "cycle",
		Context: map[string]interface{}{"path": []interface{}{"a", "b"}}}, true)

	var got map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "CYCLE_DETECTED", got["error"]["code"])
	assert.Equal(t, "cycle", got["error"]["message"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestPrintHistory(t *testing.T) {
	field, oldVal, newVal := "lag_time", "0", "8"
	entries := []client.AuditEntry{
		{ID: 1, DependencyID: "dep-1", Action: "create", ChangedBy: "usr-1"},
		{ID: 2, DependencyID: "dep-1", Action: "update", Field: &field, OldValue: &oldVal, NewValue: &newVal, ChangedBy: "usr-2"},
	}

	var buf bytes.Buffer
	printHistory(&buf, entries, false)
	out := buf.String()
	assert.Contains(t, out, "ACTION")
	assert.Contains(t, out, "lag_time")
	assert.Contains(t, out, "usr-2")

	buf.Reset()
	printHistory(&buf, nil, false)
	assert.Equal(t, "No history found\n", buf.String())
}

func TestPrintViolations(t *testing.T) {
	var buf bytes.Buffer
	printViolations(&buf, &client.TransitionCheck{
		Violations: []client.Violation{{Message: "finish design first"}},
		Warnings:   []client.Violation{{Message: "starts before lag"}},
	})
	assert.Equal(t, "blocked: finish design first\nwarning: starts before lag\n", buf.String())
}
