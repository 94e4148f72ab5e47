// Package httpclient is the HTTP Client Context used by every poller (the
// engine gives each kind its own Client), the master-catalog walker, and
// the command callers. Each Client wraps a single http.Client tuned for many small, frequent, short-lived requests against
// one local server, and decodes responses directly into the
// bridge.Result[T] envelope so callers never touch net/http themselves.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pavlovtv/telemetry-bridge"
)

const maxResponseBodySize = 1 << 20 // 1MB, PavlovTV payloads are small JSON blobs

// connection pooling limits: the bridge talks to exactly one host, so a
// handful of kept-alive connections is plenty even with six pollers firing
// concurrently.
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// Client is an HTTP client wrapper optimized for polling the local PavlovTV
// viewer API. It uses per-call timeouts via context rather than a global
// http.Client timeout, since each endpoint kind carries its own timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a Client targeting baseURL (e.g. "http://127.0.0.1:8080/").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		userAgent: "telemetry-bridge/1.0",
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetBaseURL updates the host the client targets. Safe to call between
// requests; not safe to call concurrently with a request in flight.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// BaseURL returns the currently configured host.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections immediately rather than waiting for the
// idle timeout. Safe to call multiple times.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if t, ok := c.httpClient.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

// Get performs a GET against path (joined to the client's base URL) and
// decodes a 2xx JSON body into T. Non-2xx responses are decoded as a
// bridge.Envelope and surfaced through Result.Info/Result.Error.
func Get[T any](ctx context.Context, c *Client, path string, timeout time.Duration) bridge.Result[T] {
	return do[T](ctx, c, http.MethodGet, path, nil, timeout)
}

// Post performs a POST with a JSON-encoded body against path and decodes
// the response the same way Get does.
func Post[T any](ctx context.Context, c *Client, path string, body any, timeout time.Duration) bridge.Result[T] {
	return do[T](ctx, c, http.MethodPost, path, body, timeout)
}

func do[T any](ctx context.Context, c *Client, method, path string, body any, timeout time.Duration) bridge.Result[T] {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	full, err := joinURL(c.baseURL, path)
	if err != nil {
		return errResult[T](fmt.Errorf("build url: %w", err), start)
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errResult[T](fmt.Errorf("encode request body: %w", err), start)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, full, reqBody)
	if err != nil {
		return errResult[T](fmt.Errorf("create request: %w", err), start)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	transportStart := time.Now()
	resp, err := c.httpClient.Do(req)
	transportElapsed := time.Since(transportStart)
	if err != nil {
		r := errResult[T](fmt.Errorf("request failed: %w", err), start)
		r.Timings.Transport = transportElapsed
		r.Timings.Total = time.Since(start)
		return r
	}
	defer func() { _ = resp.Body.Close() }()

	processingStart := time.Now()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		r := errResult[T](fmt.Errorf("read response body: %w", err), start)
		r.Status = intPtr(resp.StatusCode)
		r.Timings.Transport = transportElapsed
		r.Timings.Total = time.Since(start)
		return r
	}

	status := resp.StatusCode
	result := bridge.Result[T]{
		Status:  &status,
		RawBody: string(raw),
	}

	if status < 200 || status >= 300 {
		var env bridge.Envelope
		if len(raw) > 0 && json.Unmarshal(raw, &env) == nil && env.Info != "" {
			result.Info = env.Info
			result.Error = fmt.Errorf("%s %s: %s (status %d): %v", method, full, env.Info, status, env.Data)
		} else {
			result.Error = fmt.Errorf("%s %s: unexpected status %d", method, full, status)
		}
		result.Timings.Transport = transportElapsed
		result.Timings.Processing = time.Since(processingStart)
		result.Timings.Total = time.Since(start)
		return result
	}

	if len(raw) > 0 {
		var data T
		if err := json.Unmarshal(raw, &data); err != nil {
			result.Error = fmt.Errorf("decode response: %w", err)
			result.Timings.Transport = transportElapsed
			result.Timings.Processing = time.Since(processingStart)
			result.Timings.Total = time.Since(start)
			return result
		}
		result.Data = &data
	}
	result.OK = true
	result.Timings.Transport = transportElapsed
	result.Timings.Processing = time.Since(processingStart)
	result.Timings.Total = time.Since(start)
	return result
}

func errResult[T any](err error, start time.Time) bridge.Result[T] {
	return bridge.Result[T]{
		Error: err,
		Timings: bridge.Timings{
			Total: time.Since(start),
		},
	}
}

func joinURL(base, path string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	p, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(p).String(), nil
}

func intPtr(v int) *int { return &v }
