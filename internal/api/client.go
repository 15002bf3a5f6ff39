// Package api is the HTTP client for the video platform's REST API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mmcdole/vidfeed/internal/domain"
	"github.com/mmcdole/vidfeed/internal/pager"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "vidfeed/1.0"
	maxErrorText   = 200 // runes of a plain-text error body kept
)

// TokenSource supplies the bearer token for each request
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// HTTPClient is the subset of *http.Client the API client needs
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the remote API. It implements domain.AccountService and
// hands out paged collections that satisfy pager.Fetcher.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient HTTPClient
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ domain.AccountService = (*Client)(nil)

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger for request diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit caps outgoing requests at rps per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a new API client
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = StaticToken("")
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the server root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an authenticated HTTP request and returns the body of a
// 2xx response. Transport failures wrap pager.ErrNetwork; any other status is
// a *pager.RejectedError carrying the server's message.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request", "method", method, "url", reqURL, "request_id", requestID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("api request failed", "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %w", pager.ErrNetwork, domain.ErrServerOffline)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", pager.ErrNetwork, err)
	}

	c.logger.Debug("api response",
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	rejected := &pager.RejectedError{
		Status:  resp.StatusCode,
		Message: errorMessage(body),
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		rejected.Err = domain.ErrAuthFailed
	case http.StatusNotFound:
		rejected.Err = domain.ErrItemNotFound
	}
	c.logger.Warn("api request rejected",
		"request_id", requestID, "status", resp.StatusCode, "message", rejected.Message)
	return nil, rejected
}

// errorMessage extracts a human-readable message from an error body.
// Plain-text bodies are returned trimmed.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Error != "":
			return payload.Error
		case payload.Detail != "":
			return payload.Detail
		}
		return ""
	}
	text := []rune(strings.TrimSpace(string(body)))
	if len(text) > maxErrorText {
		text = text[:maxErrorText]
	}
	return string(text)
}
