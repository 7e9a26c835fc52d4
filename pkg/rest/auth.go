package rest

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultAPIKeyHeader is used when APIKeyAuth.Name is empty.
const DefaultAPIKeyHeader = "X-API-Key"

// Auth applies credentials to an outgoing request. Implementations must not
// keep state across calls; the same strategy applied twice produces the same
// headers and query parameters.
type Auth interface {
	Apply(headers http.Header, query url.Values) error
}

// NoAuth sends requests without credentials.
type NoAuth struct{}

// Apply implements Auth.
func (NoAuth) Apply(_ http.Header, _ url.Values) error {
	return nil
}

// BasicAuth sends an Authorization header with base64-encoded credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Apply implements Auth.
func (a BasicAuth) Apply(headers http.Header, _ url.Values) error {
	if a.Username == "" {
		return fmt.Errorf("basic auth: %w", ErrMissingCredentials)
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
	headers.Set("Authorization", "Basic "+credentials)

	return nil
}

// BearerAuth sends an Authorization header with a bearer token.
type BearerAuth struct {
	Token string
}

// Apply implements Auth.
func (a BearerAuth) Apply(headers http.Header, _ url.Values) error {
	if a.Token == "" {
		return fmt.Errorf("bearer auth: %w", ErrEmptyToken)
	}

	headers.Set("Authorization", "Bearer "+a.Token)

	return nil
}

// APIKeyAuth sends an API key, either as a header (the default) or as a
// query parameter when InQuery is set. Name defaults to DefaultAPIKeyHeader.
type APIKeyAuth struct {
	Key     string
	Name    string
	InQuery bool
}

// Apply implements Auth.
func (a APIKeyAuth) Apply(headers http.Header, query url.Values) error {
	if a.Key == "" {
		return fmt.Errorf("api key auth: %w", ErrEmptyAPIKey)
	}

	name := a.Name
	if name == "" {
		name = DefaultAPIKeyHeader
	}

	if a.InQuery {
		query.Set(name, a.Key)
	} else {
		headers.Set(name, a.Key)
	}

	return nil
}
