package rest

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Configuration errors.
var (
	ErrConfigRequired  = errors.New("config is required")
	ErrBaseURLRequired = errors.New("base URL is required")
)

// Path construction errors. A chain built with an invalid step keeps the
// error and reports it when the chain is resolved or dispatched.
var (
	ErrEmptySegment      = errors.New("path segment cannot be empty")
	ErrEmptyQueryKey     = errors.New("query key cannot be empty")
	ErrNoSegments        = errors.New("path has no segments")
	ErrParamWithoutOwner = errors.New("parameter requires a preceding segment")
	ErrParamRebound      = errors.New("segment already has a bound parameter")
)

// Credential errors.
var (
	ErrMissingCredentials = errors.New("credentials are required")
	ErrEmptyToken         = errors.New("token is required")
	ErrEmptyAPIKey        = errors.New("API key is required")
)

// PathError reports an invalid chain step.
type PathError struct {
	Segment string
	Err     error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("invalid path at %q: %s", e.Segment, e.Err)
	}

	return fmt.Sprintf("invalid path: %s", e.Err)
}

// Unwrap returns the underlying cause.
func (e *PathError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates the request did not complete within its timeout.
// No response accompanies it. Deadline carries the configured timeout.
type TimeoutError struct {
	Method   string
	URL      string
	Deadline time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s timed out after %s", e.Method, e.URL, e.Deadline)
}

// Timeout reports this as a timeout for net.Error-style checks.
func (e *TimeoutError) Timeout() bool {
	return true
}

// AuthenticationError indicates the server rejected the request credentials
// (401 or 403), or that credentials could not be applied locally.
type AuthenticationError struct {
	StatusCode int
	Body       []byte
	Cause      error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s", e.Cause)
	}

	return fmt.Sprintf("authentication failed with status %d", e.StatusCode)
}

// Unwrap returns the underlying cause, if any.
func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// HTTPError is the catch-all for failed dispatches. StatusCode is zero when
// the failure happened before a response was received.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Cause      error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed: %s", e.Method, e.URL, e.Cause)
	}

	return fmt.Sprintf("%s %s returned status %d", e.Method, e.URL, e.StatusCode)
}

// Unwrap returns the underlying cause, if any.
func (e *HTTPError) Unwrap() error {
	return e.Cause
}

// IsTimeout checks if the error is a request timeout.
func IsTimeout(err error) bool {
	timeoutErr := &TimeoutError{}

	return errors.As(err, &timeoutErr)
}

// IsAuthentication checks if the error is an authentication failure.
func IsAuthentication(err error) bool {
	authErr := &AuthenticationError{}

	return errors.As(err, &authErr)
}

// IsHTTPError checks if the error is a failed dispatch.
func IsHTTPError(err error) bool {
	httpErr := &HTTPError{}

	return errors.As(err, &httpErr)
}

// IsNotFound checks if the error is an HTTP 404.
func IsNotFound(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsPathError checks if the error came from chain construction.
func IsPathError(err error) bool {
	pathErr := &PathError{}

	return errors.As(err, &pathErr)
}

// AsHTTPError extracts an *HTTPError from the error chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	httpErr := &HTTPError{}
	ok := errors.As(err, &httpErr)

	return httpErr, ok
}
