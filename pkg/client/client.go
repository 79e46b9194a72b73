package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Client is an HTTP client for the tasktrack API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a new API client. Without WithBaseURL it targets
// http://localhost:7432.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	baseURL := cfg.baseURL
	if baseURL == "" {
		if cfg.host == "" {
			return nil, fmt.Errorf("host is required")
		}
		baseURL = fmt.Sprintf("http://%s:%d", cfg.host, cfg.port)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   cfg.token,
		http: &http.Client{
			Timeout: cfg.timeout,
		},
	}, nil
}

// Health checks if the server is healthy.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isConnectionRefused(err) {
			return ErrServerNotRunning
		}
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrServerUnhealthy
	}

	return nil
}
