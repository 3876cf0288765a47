// Package health holds the client side of the status server's health
// and session responses.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Response is the body of GET /health.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		Service   string `json:"service"`
		StartedAt string `json:"started_at"`
		Uptime    string `json:"uptime"`
		UptimeSec int64  `json:"uptime_sec"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// Healthy reports whether the server answered "healthy".
func (r *Response) Healthy() bool { return r.Status == "healthy" }

// Session is the body of GET /api/v1/session.
type Session struct {
	ID         string  `json:"id" yaml:"id"`
	Running    bool    `json:"running" yaml:"running"`
	DurationMs int64   `json:"duration_ms" yaml:"duration_ms"`
	Bytes      uint64  `json:"bytes" yaml:"bytes"`
	Blocks     uint64  `json:"blocks" yaml:"blocks"`
	Corrupt    uint64  `json:"corrupt" yaml:"corrupt"`
	Discarded  uint64  `json:"discarded" yaml:"discarded"`
	Overruns   uint64  `json:"overruns" yaml:"overruns"`
	Samples    uint64  `json:"samples" yaml:"samples"`
	Mbps       float64 `json:"mbps" yaml:"mbps"`
}

// Client queries a running status server.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the server at baseURL, for example
// "http://localhost:9090".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{base: baseURL, http: &http.Client{Timeout: timeout}}
}

// Health fetches /health.
func (c *Client) Health(ctx context.Context) (*Response, error) {
	var r Response
	if _, err := c.get(ctx, "/health", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Session fetches /api/v1/session. It returns nil without error when the
// server has no capture session.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	var s Session
	code, err := c.get(ctx, "/api/v1/session", &s)
	if code == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) get(ctx context.Context, path string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	// Unhealthy answers still carry a JSON body.
	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, fmt.Errorf("%s: not found", path)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}
