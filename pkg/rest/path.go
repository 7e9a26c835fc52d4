package rest

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Path is one step in a request path chain. Every builder method returns a
// new step and never mutates its receiver, so a step can be held and
// extended in different directions independently:
//
//	users := client.Path("api", "v1", "users")
//	one := users.Param(123).Path("posts")
//	all := users.Query("limit", 10)
//
// A step built from an invalid input carries the error and reports it when
// the chain is resolved or dispatched.
type Path struct {
	client   *Client
	parent   *Path
	segment  string
	param    string
	hasParam bool
	query    *queryParams
	err      error
}

// Path appends one segment per argument and returns the final step.
func (p *Path) Path(segments ...string) *Path {
	node := p
	for _, segment := range segments {
		node = node.child(segment)
	}

	return node
}

// Param binds a value to this step, emitted as the next path segment. The
// value is formatted with the same rules as query values. Binding a second
// value to the same step is an error.
func (p *Path) Param(value interface{}) *Path {
	if p.err != nil {
		return p
	}

	if p.segment == "" && p.parent == nil {
		return &Path{client: p.client, err: &PathError{Err: ErrParamWithoutOwner}}
	}

	if p.hasParam {
		return &Path{client: p.client, parent: p.parent, segment: p.segment, err: &PathError{Segment: p.segment, Err: ErrParamRebound}}
	}

	formatted := formatScalar(value)
	if formatted == "" {
		return &Path{client: p.client, parent: p.parent, segment: p.segment, err: &PathError{Segment: p.segment, Err: ErrEmptySegment}}
	}

	node := p.copyStep()
	node.param = formatted
	node.hasParam = true

	return node
}

// Query attaches a query parameter to this step. Parameters keep the order
// they were first attached in; reattaching a key replaces its value in
// place. When chains merge at resolve time, values closer to the leaf win.
func (p *Path) Query(key string, value interface{}) *Path {
	if p.err != nil {
		return p
	}

	if key == "" {
		return &Path{client: p.client, parent: p.parent, segment: p.segment, err: &PathError{Segment: p.segment, Err: ErrEmptyQueryKey}}
	}

	node := p.copyStep()
	if node.query == nil {
		node.query = newQueryParams()
	} else {
		node.query = node.query.clone()
	}

	node.query.set(key, formatScalar(value))

	return node
}

// QueryMap attaches each entry of params. Keys are applied in sorted order
// so the resulting serialization is deterministic.
func (p *Path) QueryMap(params map[string]interface{}) *Path {
	if p.err != nil || len(params) == 0 {
		return p
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	node := p
	for _, key := range keys {
		node = node.Query(key, params[key])
	}

	return node
}

// Err returns the construction error carried by this chain, if any.
func (p *Path) Err() error {
	return p.err
}

// Resolve walks the chain and returns the encoded path and query string.
// Resolution does not consume the chain; resolving twice yields identical
// results.
func (p *Path) Resolve() (string, string, error) {
	if p.err != nil {
		return "", "", p.err
	}

	var steps []*Path
	for node := p; node != nil; node = node.parent {
		steps = append(steps, node)
	}

	segments := make([]string, 0, len(steps))
	merged := newQueryParams()

	for i := len(steps) - 1; i >= 0; i-- {
		node := steps[i]

		if node.segment != "" {
			segments = append(segments, url.PathEscape(node.segment))
		}

		if node.hasParam {
			segments = append(segments, url.PathEscape(node.param))
		}

		if node.query != nil {
			for _, key := range node.query.keys {
				merged.set(key, node.query.values[key])
			}
		}
	}

	if len(segments) == 0 {
		return "", "", &PathError{Err: ErrNoSegments}
	}

	return "/" + strings.Join(segments, "/"), merged.encode(), nil
}

// URL returns the absolute URL this chain resolves to.
func (p *Path) URL() (string, error) {
	path, rawQuery, err := p.Resolve()
	if err != nil {
		return "", err
	}

	fullURL := p.client.baseURL + path
	if rawQuery != "" {
		fullURL += "?" + rawQuery
	}

	return fullURL, nil
}

// Get dispatches a GET request for this chain.
func (p *Path) Get(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return p.client.dispatch(ctx, http.MethodGet, p, nil, opts)
}

// Delete dispatches a DELETE request for this chain.
func (p *Path) Delete(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return p.client.dispatch(ctx, http.MethodDelete, p, nil, opts)
}

// Post dispatches a POST request with the given body.
func (p *Path) Post(ctx context.Context, body interface{}, opts ...RequestOption) (*Response, error) {
	return p.client.dispatch(ctx, http.MethodPost, p, body, opts)
}

// Put dispatches a PUT request with the given body.
func (p *Path) Put(ctx context.Context, body interface{}, opts ...RequestOption) (*Response, error) {
	return p.client.dispatch(ctx, http.MethodPut, p, body, opts)
}

// Patch dispatches a PATCH request with the given body.
func (p *Path) Patch(ctx context.Context, body interface{}, opts ...RequestOption) (*Response, error) {
	return p.client.dispatch(ctx, http.MethodPatch, p, body, opts)
}

func (p *Path) child(segment string) *Path {
	if p.err != nil {
		return p
	}

	if segment == "" {
		return &Path{client: p.client, parent: p, err: &PathError{Err: ErrEmptySegment}}
	}

	return &Path{client: p.client, parent: p, segment: segment}
}

// copyStep duplicates this step in place, keeping the same parent. The
// query pointer is shared; writers clone it first.
func (p *Path) copyStep() *Path {
	return &Path{
		client:   p.client,
		parent:   p.parent,
		segment:  p.segment,
		param:    p.param,
		hasParam: p.hasParam,
		query:    p.query,
		err:      p.err,
	}
}
