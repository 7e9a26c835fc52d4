// Package versioner manages working copies of product repositories.
package versioner

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/konverso-ai/kbot-installer/internal/factory"
)

// Static errors for err113 compliance.
var (
	ErrNoBranchMatched = errors.New("no branch matched")
)

// Versioner manages a working copy of a repository. Implementations wrap
// one version control system; every operation fails with a single *Error
// naming the operation that broke.
type Versioner interface {
	// Clone materializes the repository at url into path.
	Clone(ctx context.Context, url, path string) error

	// Checkout switches the working copy at path to branch.
	Checkout(ctx context.Context, path, branch string) error

	// SelectBranch checks out the first branch in branches that exists
	// and returns its name.
	SelectBranch(ctx context.Context, path string, branches []string) (string, error)

	// Add stages the given files. A nil or empty list stages everything.
	Add(ctx context.Context, path string, files []string) error

	// Pull updates the working copy from its remote.
	Pull(ctx context.Context, path string) error

	// Commit records staged changes and returns the new revision id.
	Commit(ctx context.Context, path, message string) (string, error)

	// Push publishes local commits to the remote.
	Push(ctx context.Context, path string) error

	// RemoteExists reports whether a repository is reachable at url.
	RemoteExists(ctx context.Context, url string) (bool, error)
}

// Error reports a failed repository operation.
type Error struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Registry holds the versioner builders.
//
//nolint:gochecknoglobals // Registration point shared by provider configs
var Registry = factory.NewRegistry[Versioner]()

//nolint:gochecknoinits // Builders register themselves like database/sql drivers
func init() {
	Registry.Register("git", "versioner", func(args factory.Args) (Versioner, error) {
		var authMethod transport.AuthMethod

		if raw, ok := args.Value("auth"); ok && raw != nil {
			method, ok := raw.(transport.AuthMethod)
			if !ok {
				return nil, fmt.Errorf("%w: \"auth\" must be a transport.AuthMethod, got %T", factory.ErrInvalidArguments, raw)
			}

			authMethod = method
		}

		name, err := args.StringOr("committer_name", "")
		if err != nil {
			return nil, err
		}

		email, err := args.StringOr("committer_email", "")
		if err != nil {
			return nil, err
		}

		return NewGit(authMethod, Committer{Name: name, Email: email}), nil
	})
}

// New builds a versioner by registry name, for example "git".
func New(name string, args factory.Args) (Versioner, error) {
	return Registry.New(name, "versioner", args)
}
