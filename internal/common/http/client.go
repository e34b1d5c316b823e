// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client exchanges JSON documents with bounded retries. Timeouts come from the
// caller's context, never from the transport.
type Client struct {
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	headers    map[string]string
}

type Option func(*Client)

func WithRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		backoff:    100 * time.Millisecond,
		headers:    map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON sends in as JSON to url and decodes the response into out.
// 5xx responses and transport errors are retried with exponential backoff;
// 4xx responses are returned immediately.
func (c *Client) PostJSON(ctx context.Context, url string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.send(ctx, http.MethodPost, url, body, out)
}

// GetJSON fetches url and decodes the response into out, with the same retry
// rules as PostJSON.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	return c.send(ctx, http.MethodGet, url, nil, out)
}

func (c *Client) send(ctx context.Context, method, url string, body []byte, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.do(ctx, method, url, body, out)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var statusErr *StatusError
		if errors.As(lastErr, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
