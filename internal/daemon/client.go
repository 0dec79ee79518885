package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	requestTimeout = 2 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

// ErrUnreachable means nothing answered at the daemon address.
var ErrUnreachable = errors.New("daemon: unreachable")

// Client reads a running daemon's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the daemon at addr ("host:port" or a full
// http URL).
func NewClient(addr string) *Client {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: addr,
		http:    &http.Client{},
	}
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.getJSON(ctx, "/v1/status", &st)
	return st, err
}

// Budgets fetches /v1/budgets, optionally limited to [from, to].
func (c *Client) Budgets(ctx context.Context, from, to string) ([]BudgetStatus, error) {
	path := "/v1/budgets"
	if from != "" || to != "" {
		path += "?from=" + from + "&to=" + to
	}
	var out []BudgetStatus
	err := c.getJSON(ctx, path, &out)
	return out, err
}

// Recurring fetches the pending recurring queue.
func (c *Client) Recurring(ctx context.Context) ([]Pending, error) {
	var out []Pending
	err := c.getJSON(ctx, "/v1/recurring", &out)
	return out, err
}

// Events fetches the retained event buffer, oldest first.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var out []Event
	err := c.getJSON(ctx, "/v1/events", &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("daemon: parsing %s: %w", path, err)
	}
	return nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("daemon: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	//nolint:gosec // URL is the local daemon address
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("daemon: %s returned HTTP %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("daemon: reading response: %w", err)
	}
	return body, nil
}
