// Package factory provides name-keyed registries for pluggable components.
//
// Implementations register themselves under a {name}_{package} key and are
// constructed later from configuration, so adding a provider, versioner, or
// vault backend never requires touching the call sites that select one.
package factory

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Static errors for err113 compliance.
var (
	ErrNotFound         = errors.New("no implementation registered")
	ErrNilBuilder       = errors.New("builder is nil")
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Args carries named construction arguments to a builder.
type Args map[string]interface{}

// String returns the string argument stored under key.
func (a Args) String(key string) (string, error) {
	value, ok := a[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrInvalidArguments, key)
	}

	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrInvalidArguments, key, value)
	}

	return str, nil
}

// StringOr returns the string argument stored under key, or fallback when
// the key is absent.
func (a Args) StringOr(key, fallback string) (string, error) {
	if _, ok := a[key]; !ok {
		return fallback, nil
	}

	return a.String(key)
}

// Value returns the raw argument stored under key.
func (a Args) Value(key string) (interface{}, bool) {
	value, ok := a[key]

	return value, ok
}

// Builder constructs a component from arguments.
type Builder[T any] func(args Args) (T, error)

// Registry maps {name}_{package} keys to builders. It is safe for
// concurrent use.
type Registry[T any] struct {
	mu       sync.RWMutex
	builders map[string]Builder[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{builders: make(map[string]Builder[T])}
}

// Register adds a builder under the key derived from name and pkg. Like
// database/sql drivers, registering the same key twice panics: it is a
// programming error caught at init time.
func (r *Registry[T]) Register(name, pkg string, builder Builder[T]) {
	key := BuildKey(name, pkg)

	if builder == nil {
		panic("factory: Register called with nil builder for " + key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[key]; exists {
		panic("factory: Register called twice for " + key)
	}

	r.builders[key] = builder
}

// Resolve returns the builder registered for name and pkg.
func (r *Registry[T]) Resolve(name, pkg string) (Builder[T], error) {
	key := BuildKey(name, pkg)

	r.mu.RLock()
	defer r.mu.RUnlock()

	builder, ok := r.builders[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (wanted type %s)", ErrNotFound, key, BuildTypeName(name, pkg))
	}

	return builder, nil
}

// New resolves the builder for name and pkg and invokes it with args.
func (r *Registry[T]) New(name, pkg string, args Args) (T, error) {
	var zero T

	builder, err := r.Resolve(name, pkg)
	if err != nil {
		return zero, err
	}

	component, err := builder(args)
	if err != nil {
		return zero, fmt.Errorf("building %s: %w", BuildTypeName(name, pkg), err)
	}

	return component, nil
}

// Keys returns all registered keys in sorted order.
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.builders))
	for key := range r.builders {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
