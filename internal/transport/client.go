// Package transport provides the HTTP transport used by the REST client.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/konverso-ai/kbot-installer/internal/constants"
)

// Client performs HTTP requests against a single base URL.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	userAgent  string
	logger     Logger
	debug      bool
}

// Logger interface for HTTP request/response logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request represents a single HTTP request.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Headers  map[string]string
	Body     interface{}
}

// Response represents an HTTP response with its body fully read.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the timeout applied to each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithRetryConfig enables retries for transient failures. Requests are
// performed exactly once unless this option is used.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient = httpClient
	}
}

// WithTLSSkipVerify disables TLS certificate verification.
func WithTLSSkipVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}

		if transport, ok := c.httpClient.HTTPClient.Transport.(*http.Transport); ok {
			transport.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true, // #nosec G402 -- Operator opt-in for self-signed endpoints
			}
		}
	}
}

// New creates a transport client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.Logger = nil
	// Hand back the final response instead of draining it so callers see
	// the status code and body of failed requests.
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	httpClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes a request and returns the response. Any status code is
// returned as a response; only transport-level failures produce an error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if req.RawQuery != "" {
		fullURL += "?" + req.RawQuery
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-Id", requestID)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"request_id": requestID,
			"method":     req.Method,
			"url":        fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if c.debug && c.logger != nil {
			c.logger.Error("HTTP request failed", map[string]interface{}{
				"request_id": requestID,
				"method":     req.Method,
				"url":        fullURL,
				"error":      err.Error(),
			})
		}

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"request_id":  requestID,
			"status":      httpResp.StatusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path, rawQuery string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, RawQuery: rawQuery})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

func encodeBody(body interface{}) (io.Reader, string, error) {
	switch value := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(value), "application/octet-stream", nil
	case io.Reader:
		return value, "", nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}

		return bytes.NewReader(data), "application/json", nil
	}
}
