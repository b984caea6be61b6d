package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/existflow/kudos/internal/logger"
)

// DefaultTimeout is applied to every request unless WithTimeout overrides it
const DefaultTimeout = 10 * time.Second

// Client talks to the testimonial backend over JSON/HTTP
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    func() string
	onUnauthorized func()
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource sets the function consulted for a bearer token on every admin request
func WithTokenSource(fn func() string) Option {
	return func(c *Client) {
		c.tokenSource = fn
	}
}

// WithUnauthorizedHandler sets the hook invoked once per 401 from an authenticated endpoint.
// Login and register failures never trigger it.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a client for baseURL, which includes the /api prefix
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetUnauthorizedHandler replaces the 401 hook after construction.
// Session stores use it to wire themselves in once both sides exist.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// SetTokenSource replaces the bearer token source after construction
func (c *Client) SetTokenSource(fn func() string) {
	c.tokenSource = fn
}

// access describes how a request authenticates
type access int

const (
	// admin requests carry the bearer token and report 401s to the hook
	admin access = iota
	// authPage requests (login, register) never report 401s
	authPage
	// public requests are anonymous
	public
)

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any
	access access
}

func (c *Client) do(ctx context.Context, r request) error {
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if r.access == admin && c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := logger.WithFields(
		logger.F("request_id", requestID),
		logger.F("method", r.method),
		logger.F("path", r.path),
	)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", logger.Err(err))
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, r.method, r.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("failed to read response", logger.Err(err))
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, r.method, r.path, err)
	}

	log.Debug("request done",
		logger.F("status", resp.StatusCode),
		logger.F("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Detail: ParseDetail(data)}
		if resp.StatusCode == http.StatusUnauthorized && r.access == admin && c.onUnauthorized != nil {
			log.Info("session rejected by backend")
			c.onUnauthorized()
		}
		return apiErr
	}

	if r.out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, r.out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any, a access) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query, out: out, access: a})
}

func (c *Client) send(ctx context.Context, method, path string, body, out any, a access) error {
	return c.do(ctx, request{method: method, path: path, body: body, out: out, access: a})
}

func segment(s string) string {
	return url.PathEscape(s)
}
