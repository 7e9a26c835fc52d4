package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/konverso-ai/kbot-installer/internal/constants"
	"github.com/konverso-ai/kbot-installer/internal/transport"
)

// Logger is the interface for client logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the root every chain resolves against. A trailing slash
	// is removed and a URL without a scheme defaults to https.
	BaseURL string

	// Auth applies credentials to each dispatch. Defaults to NoAuth.
	Auth Auth

	// Timeout bounds each dispatch. Defaults to 30 seconds.
	Timeout time.Duration

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Logger receives request and response logs when Debug is set.
	Logger Logger

	// Debug enables request and response logging.
	Debug bool

	// SkipTLSVerify disables TLS certificate verification.
	SkipTLSVerify bool

	// HTTPClient replaces the underlying HTTP client.
	HTTPClient *http.Client
}

// Client resolves path chains against a base URL and dispatches requests.
// A client is safe for concurrent use; chains built from it never mutate
// shared state.
type Client struct {
	baseURL   string
	auth      Auth
	timeout   time.Duration
	transport *transport.Client
}

// New creates a client from the given configuration.
func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}

	auth := config.Auth
	if auth == nil {
		auth = NoAuth{}
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	var opts []transport.Option

	if config.HTTPClient != nil {
		opts = append(opts, transport.WithHTTPClient(config.HTTPClient))
	}

	opts = append(opts, transport.WithTimeout(timeout))

	if config.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(config.UserAgent))
	}

	if config.Logger != nil {
		opts = append(opts, transport.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, transport.WithDebug(true))
	}

	if config.SkipTLSVerify {
		opts = append(opts, transport.WithTLSSkipVerify(true))
	}

	return &Client{
		baseURL:   baseURL,
		auth:      auth,
		timeout:   timeout,
		transport: transport.New(baseURL, opts...),
	}, nil
}

// NewWithBasicAuth creates a client using username/password authentication.
func NewWithBasicAuth(baseURL, username, password string) (*Client, error) {
	return New(&Config{
		BaseURL: baseURL,
		Auth:    BasicAuth{Username: username, Password: password},
	})
}

// NewWithToken creates a client using bearer token authentication.
func NewWithToken(baseURL, token string) (*Client, error) {
	return New(&Config{
		BaseURL: baseURL,
		Auth:    BearerAuth{Token: token},
	})
}

// NewWithAPIKey creates a client sending the key in the default header.
func NewWithAPIKey(baseURL, key string) (*Client, error) {
	return New(&Config{
		BaseURL: baseURL,
		Auth:    APIKeyAuth{Key: key},
	})
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-dispatch timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Path starts a chain from the base URL with the given segments.
func (c *Client) Path(segments ...string) *Path {
	root := &Path{client: c}

	return root.Path(segments...)
}

// RequestOption customizes a single dispatch.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers map[string]string
}

// WithHeader sets a header on the dispatch.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.headers[key] = value
	}
}

// WithHeaders sets multiple headers on the dispatch.
func WithHeaders(headers map[string]string) RequestOption {
	return func(rc *requestConfig) {
		for key, value := range headers {
			rc.headers[key] = value
		}
	}
}

// dispatch resolves the chain, applies authentication, and performs exactly
// one network call. Non-2xx responses are returned together with a typed
// error describing the failure.
func (c *Client) dispatch(ctx context.Context, method string, path *Path, body interface{}, opts []RequestOption) (*Response, error) {
	resolvedPath, rawQuery, err := path.Resolve()
	if err != nil {
		return nil, err
	}

	reqConfig := &requestConfig{headers: make(map[string]string)}
	for _, opt := range opts {
		opt(reqConfig)
	}

	authHeaders := make(http.Header)
	authQuery := make(url.Values)

	err = c.auth.Apply(authHeaders, authQuery)
	if err != nil {
		return nil, &AuthenticationError{Cause: err}
	}

	headers := make(map[string]string, len(authHeaders)+len(reqConfig.headers))
	for key := range authHeaders {
		headers[key] = authHeaders.Get(key)
	}

	for key, value := range reqConfig.headers {
		headers[key] = value
	}

	// Credentials placed in the query are appended after the chain's own
	// parameters and never override them.
	if len(authQuery) > 0 {
		if rawQuery == "" {
			rawQuery = authQuery.Encode()
		} else {
			rawQuery += "&" + authQuery.Encode()
		}
	}

	requestURL := c.baseURL + resolvedPath

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.transport.Do(ctx, &transport.Request{
		Method:   method,
		Path:     resolvedPath,
		RawQuery: rawQuery,
		Headers:  headers,
		Body:     body,
	})
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Method: method, URL: requestURL, Deadline: c.timeout}
		}

		return nil, &HTTPError{Method: method, URL: requestURL, Cause: err}
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return response, &AuthenticationError{StatusCode: resp.StatusCode, Body: resp.Body}
	case !response.IsSuccess():
		return response, &HTTPError{Method: method, URL: requestURL, StatusCode: resp.StatusCode, Body: resp.Body}
	default:
		return response, nil
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
