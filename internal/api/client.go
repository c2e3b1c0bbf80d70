// Package api is a client for the movie catalog REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	defaultBaseURL  = "http://localhost:8000/api/v1"
	defaultAttempts = 3
	maxErrorBody    = 64 << 10
)

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token() string
}

// UnauthorizedHandler is called once for every 401 response.
type UnauthorizedHandler func(ctx context.Context)

// Client is a movie backend API client.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	log            *slog.Logger
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	attempts       uint
	retryDelay     time.Duration
	fs             afero.Fs
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root, e.g. "https://host/api/v1".
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a logger for request tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "api")
	}
}

// WithTokenSource attaches bearer tokens to requests.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithUnauthorizedHandler sets the hook run on 401 responses.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

// WithRetries sets how many times idempotent reads are attempted.
func WithRetries(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.retryDelay = delay
	}
}

// WithFS sets the filesystem poster uploads are read from.
func WithFS(fs afero.Fs) Option {
	return func(c *Client) {
		c.fs = fs
	}
}

// New creates a backend client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:        slog.New(slog.DiscardHandler),
		attempts:   defaultAttempts,
		retryDelay: 200 * time.Millisecond,
		fs:         afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs a single request with auth and tracing headers. A 401 runs
// the unauthorized hook and returns ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("api request failed", "method", method, "endpoint", endpoint, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	c.log.Debug("api response", "method", method, "endpoint", endpoint, "status", resp.StatusCode,
		"request_id", requestID, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		c.log.Warn("token rejected", "endpoint", endpoint)
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return nil, ErrUnauthorized
	}
	return resp, nil
}

// get performs an idempotent read, retrying transport failures and 5xx.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, http.Header, error) {
	var (
		data   []byte
		header http.Header
	)
	err := retry.Do(
		func() error {
			resp, err := c.do(ctx, http.MethodGet, endpoint, query, nil, "")
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != http.StatusOK {
				return readStatusError(resp)
			}
			data, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			header = resp.Header
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug("retrying api read", "endpoint", endpoint, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	return data, header, nil
}

// postJSON sends body as JSON and decodes a JSON response into result.
func (c *Client) postJSON(ctx context.Context, endpoint string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, endpoint, nil, bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return readStatusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	// Transport and read failures.
	return true
}

// readStatusError builds a StatusError, extracting the backend's "detail".
func readStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Code:   resp.StatusCode,
		Status: resp.Status,
		Detail: extractDetail(body),
	}
}

// extractDetail reads FastAPI-style error bodies: {"detail": "..."} or
// {"detail": [{"msg": "..."}]}.
func extractDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
