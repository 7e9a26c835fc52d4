package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is the outcome of a dispatched request. Dispatches that fail
// with a status code still return their response, so callers can inspect
// the body alongside the error.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// JSON unmarshals the response body into target.
func (r *Response) JSON(target interface{}) error {
	err := json.Unmarshal(r.Body, target)
	if err != nil {
		return fmt.Errorf("unmarshaling response body: %w", err)
	}

	return nil
}

// String returns the response body as a string.
func (r *Response) String() string {
	return string(r.Body)
}
