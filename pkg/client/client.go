// Package client talks to the idleased wire API. Allocator failures arrive
// as HTTP 200 with an error payload, so responses are decoded into an
// envelope first and surfaced as APIError values.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// Lease is an id held until Exp (ms since the Unix epoch).
type Lease struct {
	ID  int
	Exp int64
}

// Status mirrors the daemon's /status payload.
type Status struct {
	IDMin     int    `json:"id_min"`
	IDMax     int    `json:"id_max"`
	TimeoutMs int64  `json:"timeout_ms"`
	Available int    `json:"available"`
	Leased    int    `json:"leased"`
	Reclaimed uint64 `json:"reclaimed"`
}

// APIError is a coded allocator failure returned by the daemon.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Msg, e.Code)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for a daemon at baseURL, e.g. "http://127.0.0.1:3000".
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// envelope is the union of the success and failure payload shapes.
type envelope struct {
	ID    *int   `json:"id"`
	Exp   *int64 `json:"exp"`
	Error *struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error"`
}

func (c *Client) getLease(ctx context.Context, path string) (*Lease, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s failed: status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("request %s returned malformed payload: %w", path, err)
	}
	if env.Error != nil {
		return nil, &APIError{Code: env.Error.Code, Msg: env.Error.Msg}
	}
	if env.ID == nil || env.Exp == nil {
		return nil, fmt.Errorf("request %s returned malformed payload", path)
	}
	return &Lease{ID: *env.ID, Exp: *env.Exp}, nil
}

// Next acquires the oldest available id.
func (c *Client) Next(ctx context.Context) (*Lease, error) {
	return c.getLease(ctx, "/next")
}

// Heartbeat renews the lease on id.
func (c *Client) Heartbeat(ctx context.Context, id int) (*Lease, error) {
	return c.getLease(ctx, fmt.Sprintf("/heartbeat/%d", id))
}

// Status fetches pool bounds and occupancy.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status request failed: status %d", resp.StatusCode)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("status request returned malformed payload: %w", err)
	}
	return &status, nil
}
