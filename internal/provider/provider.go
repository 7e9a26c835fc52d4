// Package provider implements the sources products are fetched from.
//
// A provider knows how to place a product checkout at a local path: the
// git providers clone from GitHub or Bitbucket, the nexus provider
// downloads and unpacks the tar.gz archives published by the build
// pipeline. The selector tries a list of providers in order and keeps
// track of which one served the product.
//
// Providers register under {name}_provider keys and are built through
// New with their connection parameters.
package provider

import (
	"context"
	"fmt"

	"github.com/konverso-ai/kbot-installer/internal/factory"
)

// Provider fetches product checkouts from a single source.
type Provider interface {
	// Name identifies the provider in results and logs.
	Name() string

	// Fetch places the checkout of repository at the given branch into
	// the target directory and reports which source and branch served
	// it. The directory is created when missing.
	Fetch(ctx context.Context, repository, branch, target string) (*Fetched, error)

	// RemoteExists reports whether the provider hosts the repository.
	RemoteExists(ctx context.Context, repository string) (bool, error)
}

// Fetched reports which source served a product and from which branch.
type Fetched struct {
	Provider string
	Branch   string
}

// Logger matches the logging interface shared across the installer's
// packages.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Error wraps a failure of a single provider operation.
type Error struct {
	Provider   string
	Repository string
	Err        error
}

// Error returns a string representation of the provider error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Repository, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Registry holds the provider builders, keyed {name}_provider.
//
//nolint:gochecknoglobals // Shared builder registry, mirrors database/sql driver registration.
var Registry = factory.NewRegistry[Provider]()

// New builds a registered provider by name.
func New(name string, args factory.Args) (Provider, error) {
	return Registry.New(name, "provider", args)
}
