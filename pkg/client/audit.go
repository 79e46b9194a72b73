package client

import (
	"context"
	"net/http"
	"net/url"
)

// GetDependencyHistory retrieves the audit trail of a dependency, oldest first.
func (c *Client) GetDependencyHistory(ctx context.Context, dependencyID string) ([]AuditEntry, error) {
	path := "/v1/dependencies/" + url.PathEscape(dependencyID) + "/history"
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var entries []AuditEntry
	if err := c.do(req, "get dependency history", http.StatusOK, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
