package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(WithBaseURL(server.URL), WithToken("tok"))
	require.NoError(t, err)
	return c
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, ctx map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiErrorResponse{Error: apiError{Code: string(code), Message: "failed", Context: ctx}})
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:7432", c.baseURL)

	c, err = NewClient(WithHost("example.com"), WithPort(9000))
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:9000", c.baseURL)

	_, err = NewClient(WithHost(""))
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.NoError(t, newTestClient(t, server).Health(context.Background()))
}

func TestHealth_Unhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	assert.ErrorIs(t, newTestClient(t, server).Health(context.Background()), ErrServerUnhealthy)
}

func TestServerNotRunning(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewClient(WithBaseURL(url))
	require.NoError(t, err)
	err = c.Health(context.Background())
	assert.True(t, IsServerNotRunning(err), "got %v", err)
}

func TestCreateDependency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/dependencies", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tsk-a", body["predecessorTaskId"])
		assert.Equal(t, "tsk-b", body["successorTaskId"])
		assert.Equal(t, "SS", body["dependencyType"])
		assert.Equal(t, false, body["notifyUsers"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Dependency{ID: "dep-1", PredecessorTaskID: "tsk-a", SuccessorTaskID: "tsk-b", Type: StartToStart, IsActive: true})
	}))
	defer server.Close()

	off := false
	dep, err := newTestClient(t, server).CreateDependency(context.Background(), CreateDependencyRequest{
		PredecessorTaskID: "tsk-a",
		SuccessorTaskID:   "tsk-b",
		DependencyType:    StartToStart,
		NotifyUsers:       &off,
	})
	require.NoError(t, err)
	assert.Equal(t, "dep-1", dep.ID)
	assert.Equal(t, StartToStart, dep.Type)
}

func TestCreateDependency_CycleDetected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusBadRequest, ErrCodeCycleDetected, map[string]interface{}{
			"path": []interface{}{"tsk-b", "tsk-a", "tsk-b"},
		})
	}))
	defer server.Close()

	_, err := newTestClient(t, server).CreateDependency(context.Background(), CreateDependencyRequest{
		PredecessorTaskID: "tsk-b", SuccessorTaskID: "tsk-a",
	})
	require.Error(t, err)
	assert.True(t, IsCycleDetected(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{"tsk-b", "tsk-a", "tsk-b"}, apiErr.CyclePath())
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestValidationErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusBadRequest, ErrCodeValidationFailed, map[string]interface{}{
			"details": []interface{}{"lagTime failed on 'min' validation"},
		})
	}))
	defer server.Close()

	_, err := newTestClient(t, server).CreateDependency(context.Background(), CreateDependencyRequest{})
	assert.True(t, IsValidationFailed(err))
	assert.Equal(t, "failed: lagTime failed on 'min' validation", err.Error())
}

func TestListDependencies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/dependencies/tasks/tsk-b", r.URL.Path)
		assert.Equal(t, "predecessor", r.URL.Query().Get("direction"))
		json.NewEncoder(w).Encode(DependencyList{Dependencies: []Dependency{{ID: "dep-1"}}, FromCache: true})
	}))
	defer server.Close()

	list, err := newTestClient(t, server).ListDependencies(context.Background(), "tsk-b", "predecessor")
	require.NoError(t, err)
	assert.True(t, list.FromCache)
	require.Len(t, list.Dependencies, 1)
	assert.Equal(t, "dep-1", list.Dependencies[0].ID)
}

func TestDeleteDependency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/v1/dependencies/dep-missing" {
			writeError(w, http.StatusNotFound, ErrCodeDependencyNotFound, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(t, server)
	assert.NoError(t, c.DeleteDependency(context.Background(), "dep-1"))
	assert.True(t, IsDependencyNotFound(c.DeleteDependency(context.Background(), "dep-missing")))
}

func TestCheckCircularAndChain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/dependencies/check-circular":
			json.NewEncoder(w).Encode(CircularCheck{HasCircular: true, Path: []string{"a", "b", "a"}})
		case "/v1/dependencies/tasks/a/chain":
			assert.Equal(t, "backward", r.URL.Query().Get("direction"))
			json.NewEncoder(w).Encode([]Dependency{{ID: "d1"}, {ID: "d2"}})
		case "/v1/dependencies/tasks/a/validate":
			json.NewEncoder(w).Encode(TransitionCheck{Valid: false, Violations: []Violation{{Message: "blocked"}}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server)
	ctx := context.Background()

	check, err := c.CheckCircular(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, check.HasCircular)

	chain, err := c.Chain(ctx, "a", "backward")
	require.NoError(t, err)
	assert.Len(t, chain, 2)

	tc, err := c.ValidateTransition(ctx, "a", "in_progress")
	require.NoError(t, err)
	assert.False(t, tc.Valid)
	assert.Equal(t, "blocked", tc.Violations[0].Message)
}

func TestNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Chain(context.Background(), "a", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error (502)")
}
