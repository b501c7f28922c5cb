package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// UpstreamError is a non-2xx response from an external API. It carries the
// decoded error body and is fatal to the single call that hit it.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// DataShapeError means a 2xx response did not match the expected structure.
// It implies an API contract change, so callers must not retry.
type DataShapeError struct {
	Endpoint string
	Reason   string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("unexpected response shape from %s: %s", e.Endpoint, e.Reason)
}

// client is the shared HTTP plumbing of both upstream clients. Every
// request waits on the limiter first: the upstreams enforce a minimum
// inter-request interval per API key.
type client struct {
	baseURL string
	auth    string
	http    *http.Client
	limiter *rate.Limiter
}

func newClient(baseURL, auth string, pause time.Duration) *client {
	limit := rate.Inf
	if pause > 0 {
		limit = rate.Every(pause)
	}
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    auth,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *client) do(ctx context.Context, method, path string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth != "" {
		req.Header.Set("Authorization", "Bearer "+c.auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DataShapeError{Endpoint: path, Reason: err.Error()}
	}
	return nil
}
