package provider

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/konverso-ai/kbot-installer/internal/auth"
	"github.com/konverso-ai/kbot-installer/internal/factory"
	"github.com/konverso-ai/kbot-installer/internal/versioner"
)

//nolint:gochecknoinits // Builder registration, mirrors database/sql driver registration.
func init() {
	Registry.Register("github", "provider", func(args factory.Args) (Provider, error) {
		method, err := gitAuth(args)
		if err != nil {
			return nil, err
		}

		account, err := args.StringOr("account", DefaultGitHubAccount)
		if err != nil {
			return nil, err
		}

		return NewGitHub(account, method), nil
	})

	Registry.Register("bitbucket", "provider", func(args factory.Args) (Provider, error) {
		method, err := gitAuth(args)
		if err != nil {
			return nil, err
		}

		account, err := args.StringOr("account", DefaultBitbucketAccount)
		if err != nil {
			return nil, err
		}

		return NewBitbucket(account, method), nil
	})
}

// gitAuth builds optional git credentials from builder arguments. A
// token maps to the user_pass scheme with the git user, a username and
// password pair passes through, and no arguments mean anonymous access.
func gitAuth(args factory.Args) (transport.AuthMethod, error) {
	token, err := args.StringOr("token", "")
	if err != nil {
		return nil, err
	}

	if token != "" {
		return auth.New("user_pass", factory.Args{"username": "git", "password": token})
	}

	username, err := args.StringOr("username", "")
	if err != nil {
		return nil, err
	}

	if username == "" {
		return nil, nil
	}

	password, err := args.StringOr("password", "")
	if err != nil {
		return nil, err
	}

	return auth.New("user_pass", factory.Args{
		"username": username,
		"password": password,
	})
}

// GitProvider fetches products by cloning git repositories from a
// hosting account.
type GitProvider struct {
	name    string
	baseURL string
	account string
	vers    versioner.Versioner
}

// NewGit builds a git provider for an arbitrary hosting base URL.
// NewGitHub and NewBitbucket wrap it with the production defaults.
func NewGit(name, baseURL, account string, method transport.AuthMethod) *GitProvider {
	return &GitProvider{
		name:    name,
		baseURL: baseURL,
		account: account,
		vers:    versioner.NewGit(method, versioner.Committer{}),
	}
}

// NewGitHub returns the provider for a GitHub account.
func NewGitHub(account string, method transport.AuthMethod) *GitProvider {
	return NewGit("github", DefaultGitHubBase, account, method)
}

// NewBitbucket returns the provider for a Bitbucket account.
func NewBitbucket(account string, method transport.AuthMethod) *GitProvider {
	return NewGit("bitbucket", DefaultBitbucketBase, account, method)
}

// Name implements Provider.
func (p *GitProvider) Name() string {
	return p.name
}

// URL returns the clone URL for a repository under the provider's
// account.
func (p *GitProvider) URL(repository string) string {
	return fmt.Sprintf("%s/%s/%s.git", p.baseURL, p.account, repository)
}

// Fetch clones the repository into target and checks out the requested
// branch. An empty branch keeps the remote's default branch.
func (p *GitProvider) Fetch(ctx context.Context, repository, branch, target string) (*Fetched, error) {
	url := p.URL(repository)

	if err := p.vers.Clone(ctx, url, target); err != nil {
		return nil, &Error{Provider: p.name, Repository: repository, Err: err}
	}

	if branch != "" {
		if err := p.vers.Checkout(ctx, target, branch); err != nil {
			return nil, &Error{Provider: p.name, Repository: repository, Err: err}
		}
	}

	return &Fetched{Provider: p.name, Branch: branch}, nil
}

// RemoteExists implements Provider with a remote listing.
func (p *GitProvider) RemoteExists(ctx context.Context, repository string) (bool, error) {
	ok, err := p.vers.RemoteExists(ctx, p.URL(repository))
	if err != nil {
		return false, &Error{Provider: p.name, Repository: repository, Err: err}
	}

	return ok, nil
}
