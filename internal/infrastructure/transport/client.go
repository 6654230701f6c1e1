// Package transport implements the portal API HTTP client. It owns request
// timeouts, bounded retry with exponential backoff, bearer-token attachment,
// and the classification of transport outcomes into the shared error
// taxonomy. Gateways never touch raw network failures: everything leaving
// this package is a *shared.Error.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/portal-hub/student-portal/internal/domain/shared"
	"github.com/portal-hub/student-portal/pkg/logger"
	"github.com/portal-hub/student-portal/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// DefaultTimeout bounds a single request attempt unless overridden per call.
const DefaultTimeout = 10 * time.Second

// Config contains configuration for the portal API client.
type Config struct {
	// BaseURL is the portal API base URL, without a trailing slash.
	BaseURL string

	// Timeout is the per-attempt request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration

	// MaxRetries is the default number of additional attempts for GET
	// requests. Non-idempotent methods never retry unless the call opts in
	// via WithRetries.
	MaxRetries int

	// UserAgent is sent with every request when set.
	UserAgent string

	// Logger for structured logging. Defaults to logger.Default().
	Logger *logger.Logger

	// sleep overrides the backoff wait between retry attempts. Tests use it
	// to record the delay sequence instead of waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// Client is the portal API client. A single Client is shared by all gateways
// and is safe for concurrent use.
//
// The auth token is the only shared mutable state. It is replaced wholesale
// by SetAuthToken/RemoveAuthToken with last-writer-wins semantics: two
// concurrent auth flows (an in-flight refresh racing a fresh login) can
// clobber each other's token, and no ordering is guaranteed.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logger.Logger

	token   string
	tokenMu sync.RWMutex
}

// New creates a new portal API client.
func New(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Logger == nil {
		config.Logger = logger.Default()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{},
		logger:     config.Logger.With(logger.String("component", "transport")),
	}
}

// SetAuthToken stores the bearer token attached to subsequent requests.
func (c *Client) SetAuthToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

// RemoveAuthToken clears the bearer token for subsequent requests.
func (c *Client) RemoveAuthToken() {
	c.tokenMu.Lock()
	c.token = ""
	c.tokenMu.Unlock()
}

// AuthToken returns the currently attached bearer token, if any.
func (c *Client) AuthToken() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST OPTIONS
// ══════════════════════════════════════════════════════════════════════════════

type requestOptions struct {
	headers map[string]string
	timeout time.Duration
	retries int
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// WithHeaders merges extra headers over the defaults for this call.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithTimeout overrides the per-attempt timeout for this call.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetries allows up to n additional attempts for this call. Failures
// classified as authentication, authorization or validation are never
// retried regardless of n.
func WithRetries(n int) RequestOption {
	return func(o *requestOptions) {
		if n > 0 {
			o.retries = n
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST EXECUTION
// ══════════════════════════════════════════════════════════════════════════════

// Do performs an HTTP request against the configured base URL and decodes the
// response payload into result (which may be nil for operations whose body is
// irrelevant). Attempts are strictly sequential; between attempt n and n+1
// the client waits 2^n seconds, uncapped.
func (c *Client) Do(ctx context.Context, method, path string, body any, result any, opts ...RequestOption) error {
	options := requestOptions{timeout: c.config.Timeout}
	if method == http.MethodGet {
		options.retries = c.config.MaxRetries
	}
	for _, opt := range opts {
		opt(&options)
	}

	policy := retry.New(
		retry.WithMaxRetries(options.retries),
		retry.WithRetryIf(retryable),
		retry.WithSleep(c.config.sleep),
	)

	return policy.Do(ctx, func(ctx context.Context) error {
		return c.doSingle(ctx, method, path, body, result, options)
	})
}

// doSingle performs one attempt. Every failure path returns a *shared.Error.
func (c *Client) doSingle(ctx context.Context, method, path string, body any, result any, options requestOptions) error {
	ctx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return shared.NewErrorf(shared.KindValidation, "request body is not serializable: %v", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return shared.NewErrorf(shared.KindNetwork, "create request: %v", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.tokenMu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.tokenMu.RUnlock()

	for k, v := range options.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return shared.NewError(shared.KindNetwork, "Request timed out")
		}
		return shared.NewErrorf(shared.KindNetwork, "request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return shared.NewErrorf(shared.KindNetwork, "read response: %v", err)
	}

	c.logger.Debug("portal api request",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode, resp.Status, respBody)
	}

	return decodeSuccess(respBody, result)
}

// retryable is the transport retry classifier. Unstructured errors cannot
// reach it (doSingle always classifies), but retrying them is the safe
// default anyway.
func retryable(err error) bool {
	if e, ok := shared.AsError(err); ok {
		return shared.RetryableKind(e.Kind)
	}
	return true
}
