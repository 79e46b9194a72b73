package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/pkg/client"
)

func transitionServer(t *testing.T, valid bool, patched *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/dependencies/tasks/tsk-b/validate":
			check := client.TransitionCheck{Valid: valid}
			if !valid {
				check.Violations = []client.Violation{{Message: "tsk-a must be done"}}
			}
			json.NewEncoder(w).Encode(check)
		case r.Method == http.MethodPatch && r.URL.Path == "/v1/tasks/tsk-b":
			patched.Add(1)
			json.NewEncoder(w).Encode(client.Task{ID: "tsk-b", Status: "in_progress"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSetStatus(t *testing.T) {
	tests := []struct {
		name        string
		valid       bool
		force       bool
		wantPatched int32
		wantErr     bool
	}{
		{"allowed", true, false, 1, false},
		{"blocked", false, false, 0, true},
		{"forced", false, true, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patched atomic.Int32
			server := transitionServer(t, tt.valid, &patched)
			c, err := client.NewClient(client.WithBaseURL(server.URL))
			require.NoError(t, err)

			task, err := setStatus(context.Background(), c, "tsk-b", "in_progress", tt.force)
			if tt.wantErr {
				require.ErrorIs(t, err, errBlocked)
				assert.Equal(t, ExitRejected, mapErrorToExitCode(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, "in_progress", task.Status)
			}
			assert.Equal(t, tt.wantPatched, patched.Load())
		})
	}
}
