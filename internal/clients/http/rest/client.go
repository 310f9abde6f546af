// Package rest is the thin JSON client shared by the payment gateway
// adapters: one long-lived *http.Client per provider, bounded timeouts,
// and a small capped retry for transient upstream failures.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultTimeout    = 8 * time.Second
	defaultMaxRetries = 2
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, truncate(e.Body, 256))
}

// Client issues JSON requests against one upstream base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
}

type Option func(*Client)

// WithMaxRetries caps how many times a failed call is retried.
func WithMaxRetries(retries uint64) Option {
	return func(c *Client) { c.maxRetries = retries }
}

// New builds a client with sane defaults. Pass a shared *http.Client so
// connections pool across calls; nil gets a bounded-timeout default.
func New(baseURL string, httpClient *http.Client, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	c := &Client{baseURL: baseURL, httpClient: httpClient, maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// DoJSON sends body (when non-nil) as JSON and decodes a 2xx response into
// out (when non-nil). Network errors and 5xx responses are retried with
// exponential backoff up to the configured cap; 4xx responses are not,
// since replaying a rejected request cannot succeed.
func (c *Client) DoJSON(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = encoded
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return &StatusError{StatusCode: resp.StatusCode, Body: data}
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: data})
		}
		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return backoff.Permanent(fmt.Errorf("decode response: %w", err))
			}
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(), c.maxRetries), ctx)
	return backoff.Retry(operation, policy)
}

func newExponentialBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	return b
}

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}
