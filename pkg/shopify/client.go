// Package shopify provides a Shopify Admin REST API client: OAuth installation
// (authorize URL, callback verification, token exchange), immutable request
// descriptors, and a lazy page iterator over paginated collections.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultUserAgent       = "shopkeeper"
	defaultRequestTimeout  = 30 * time.Second
	maxResponseBodyBytes   = 16 << 20
	contentTypeJSON        = "application/json"
	retryAfterHeader       = "Retry-After"
	transportErrorBodySize = 512
)

// Doer executes a request descriptor. *Client implements it; tests and
// callers with their own transport can substitute another implementation.
type Doer interface {
	Do(ctx context.Context, req RequestDescriptor) (*Response, error)
}

// Response is a successful (2xx) HTTP response with its body read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	CallLimit  *CallLimit
}

// Observer receives instrumentation events. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
	ObservePage(resource string, records int)
	ObserveTokenExchange(result string)
	ObserveRejectedCallback(property string)
	ObserveRateLimitWait(elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, int, time.Duration) {}
func (nopObserver) ObservePage(string, int) {}
func (nopObserver) ObserveTokenExchange(string) {}
func (nopObserver) ObserveRejectedCallback(string) {}
func (nopObserver) ObserveRateLimitWait(time.Duration) {}

// Client executes RequestDescriptors over net/http.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *RateLimiter
	logger      *log.Logger
	observer    Observer
	nowFunc     func() time.Time
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sends every relative request to base instead of the shop host.
// Intended for tests and proxies.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRateLimiter paces every call through r.Wait and feeds it the call
// limit header of each response.
func WithRateLimiter(r *RateLimiter) ClientOption {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// WithLogger sets the logger used for request debug output.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithObserver sets the instrumentation hook.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewClient creates a new HTTP transport for the Admin API.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		userAgent:  defaultUserAgent,
		observer:   nopObserver{},
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observer returns the instrumentation hook, never nil.
func (c *Client) Observer() Observer {
	return c.observer
}

// Do sends req once. Network failures and non-2xx answers are returned as
// *TransportError; nothing is retried.
func (c *Client) Do(ctx context.Context, req RequestDescriptor) (*Response, error) {
	if c.rateLimiter != nil {
		start := c.nowFunc()
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		c.observer.ObserveRateLimitWait(c.nowFunc().Sub(start))
	}

	u, err := req.URL(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("building request url: %w", err)
	}

	var body io.Reader = http.NoBody
	if payload := req.Body(); payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: marshaling request body: %w", ErrInvalidInput, err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method()
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header = req.Header()
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Body() != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	for _, opt := range req.Credentials().RequestOptions() {
		opt(httpReq)
	}

	if c.logger != nil {
		c.logger.Debug("shopify request", "method", method, "url", u.Redacted())
	}

	start := c.nowFunc()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observer.ObserveRequest(method, 0, c.nowFunc().Sub(start))
		return nil, &TransportError{Method: method, URL: u.Redacted(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	c.observer.ObserveRequest(method, resp.StatusCode, c.nowFunc().Sub(start))
	if err != nil {
		return nil, &TransportError{
			Method:     method,
			URL:        u.Redacted(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("reading response body: %w", err),
		}
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}
	if limit, ok := ParseCallLimit(resp.Header.Get(callLimitHeader)); ok {
		out.CallLimit = &limit
		if c.rateLimiter != nil {
			c.rateLimiter.Observe(limit)
		}
	}

	if c.logger != nil {
		c.logger.Debug(
			"shopify response",
			"method", method,
			"status", resp.StatusCode,
			"call_limit", resp.Header.Get(callLimitHeader),
		)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &TransportError{
			Method:     method,
			URL:        u.Redacted(),
			StatusCode: resp.StatusCode,
			Status:     StatusText(resp.StatusCode),
			Body:       truncateBody(respBody),
			RetryAfter: parseRetryAfter(resp.Header.Get(retryAfterHeader)),
		}
	}

	return out, nil
}

func truncateBody(body []byte) string {
	if len(body) <= transportErrorBodySize {
		return string(body)
	}
	return string(body[:transportErrorBodySize]) + "... (" + strconv.Itoa(len(body)) + " bytes)"
}
