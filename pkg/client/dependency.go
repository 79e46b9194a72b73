package client

import (
	"context"
	"net/http"
	"net/url"
)

// CreateDependency creates an edge from the predecessor to the successor.
func (c *Client) CreateDependency(ctx context.Context, in CreateDependencyRequest) (*Dependency, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/v1/dependencies", in)
	if err != nil {
		return nil, err
	}

	var dep Dependency
	if err := c.do(req, "create dependency", http.StatusCreated, &dep); err != nil {
		return nil, err
	}
	return &dep, nil
}

// ListDependencies lists a task's active edges. direction is predecessor,
// successor or both; empty means both.
func (c *Client) ListDependencies(ctx context.Context, taskID, direction string) (*DependencyList, error) {
	path := "/v1/dependencies/tasks/" + url.PathEscape(taskID)
	if direction != "" {
		path += "?direction=" + url.QueryEscape(direction)
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var list DependencyList
	if err := c.do(req, "list dependencies", http.StatusOK, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteDependency soft-deletes an edge. Deleting an inactive edge succeeds.
func (c *Client) DeleteDependency(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/v1/dependencies/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, "delete dependency", http.StatusNoContent, nil)
}

// CheckCircular reports whether adding the edge would close a cycle.
func (c *Client) CheckCircular(ctx context.Context, predecessorID, successorID string) (*CircularCheck, error) {
	body := map[string]string{"predecessorTaskId": predecessorID, "successorTaskId": successorID}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/v1/dependencies/check-circular", body)
	if err != nil {
		return nil, err
	}

	var check CircularCheck
	if err := c.do(req, "check circular", http.StatusOK, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// Chain walks the dependency chain from a task, forward or backward.
func (c *Client) Chain(ctx context.Context, taskID, direction string) ([]Dependency, error) {
	path := "/v1/dependencies/tasks/" + url.PathEscape(taskID) + "/chain"
	if direction != "" {
		path += "?direction=" + url.QueryEscape(direction)
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var chain []Dependency
	if err := c.do(req, "chain", http.StatusOK, &chain); err != nil {
		return nil, err
	}
	return chain, nil
}

// ValidateTransition asks whether a task may move to newStatus.
func (c *Client) ValidateTransition(ctx context.Context, taskID, newStatus string) (*TransitionCheck, error) {
	body := map[string]string{"newStatus": newStatus}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/v1/dependencies/tasks/"+url.PathEscape(taskID)+"/validate", body)
	if err != nil {
		return nil, err
	}

	var check TransitionCheck
	if err := c.do(req, "validate transition", http.StatusOK, &check); err != nil {
		return nil, err
	}
	return &check, nil
}
