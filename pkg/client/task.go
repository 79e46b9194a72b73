package client

import (
	"context"
	"net/http"
	"net/url"
)

// CreateTask registers a task.
func (c *Client) CreateTask(ctx context.Context, in CreateTaskRequest) (*Task, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/v1/tasks", in)
	if err != nil {
		return nil, err
	}

	var task Task
	if err := c.do(req, "create task", http.StatusCreated, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask retrieves a task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/tasks/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var task Task
	if err := c.do(req, "get task", http.StatusOK, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// SetTaskStatus changes a task's status. Callers that want dependency
// enforcement run ValidateTransition first.
func (c *Client) SetTaskStatus(ctx context.Context, id, status string) (*Task, error) {
	body := map[string]string{"status": status}
	req, err := c.newJSONRequest(ctx, http.MethodPatch, "/v1/tasks/"+url.PathEscape(id), body)
	if err != nil {
		return nil, err
	}

	var task Task
	if err := c.do(req, "set task status", http.StatusOK, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
