package versioner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Default commit identity.
const (
	DefaultCommitterName  = "kbot-installer"
	DefaultCommitterEmail = "installer@konverso.ai"
)

// Committer identifies the author of installer-made commits.
type Committer struct {
	Name  string
	Email string
}

// GitVersioner implements Versioner on top of go-git.
type GitVersioner struct {
	auth       transport.AuthMethod
	remoteName string
	committer  Committer
}

// NewGit creates a git versioner. auth may be nil for anonymous access.
func NewGit(auth transport.AuthMethod, committer Committer) *GitVersioner {
	if committer.Name == "" {
		committer.Name = DefaultCommitterName
	}

	if committer.Email == "" {
		committer.Email = DefaultCommitterEmail
	}

	return &GitVersioner{
		auth:       auth,
		remoteName: git.DefaultRemoteName,
		committer:  committer,
	}
}

// Clone materializes the repository at url into path.
func (v *GitVersioner) Clone(ctx context.Context, url, path string) error {
	_, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:  url,
		Auth: v.auth,
	})
	if err != nil {
		return &Error{Op: "clone", Path: url, Err: err}
	}

	return nil
}

// Checkout switches the working copy at path to branch. Branches that only
// exist on the remote are materialized as local tracking branches first;
// a clone only creates a local branch for the remote HEAD.
func (v *GitVersioner) Checkout(_ context.Context, path, branch string) error {
	repo, worktree, err := v.open(path)
	if err != nil {
		return &Error{Op: "checkout", Path: path, Err: err}
	}

	localErr := worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
	})
	if localErr == nil {
		return nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision("refs/remotes/" + v.remoteName + "/" + branch))
	if err != nil {
		return &Error{Op: "checkout", Path: path, Err: localErr}
	}

	err = worktree.Checkout(&git.CheckoutOptions{
		Hash:   *hash,
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	})
	if err != nil {
		return &Error{Op: "checkout", Path: path, Err: err}
	}

	return nil
}

// SelectBranch checks out the first branch that exists and returns its name.
func (v *GitVersioner) SelectBranch(ctx context.Context, path string, branches []string) (string, error) {
	for _, branch := range branches {
		err := v.Checkout(ctx, path, branch)
		if err == nil {
			return branch, nil
		}
	}

	return "", &Error{
		Op:   "select-branch",
		Path: path,
		Err:  fmt.Errorf("%w: tried %s", ErrNoBranchMatched, strings.Join(branches, ", ")),
	}
}

// Add stages the given files. A nil or empty list stages everything.
func (v *GitVersioner) Add(_ context.Context, path string, files []string) error {
	_, worktree, err := v.open(path)
	if err != nil {
		return &Error{Op: "add", Path: path, Err: err}
	}

	if len(files) == 0 {
		err = worktree.AddWithOptions(&git.AddOptions{All: true})
		if err != nil {
			return &Error{Op: "add", Path: path, Err: err}
		}

		return nil
	}

	for _, file := range files {
		_, err = worktree.Add(file)
		if err != nil {
			return &Error{Op: "add", Path: path, Err: fmt.Errorf("staging %s: %w", file, err)}
		}
	}

	return nil
}

// Pull updates the working copy from its remote. An already up to date
// working copy is not an error.
func (v *GitVersioner) Pull(ctx context.Context, path string) error {
	_, worktree, err := v.open(path)
	if err != nil {
		return &Error{Op: "pull", Path: path, Err: err}
	}

	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName: v.remoteName,
		Auth:       v.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return &Error{Op: "pull", Path: path, Err: err}
	}

	return nil
}

// Commit records staged changes and returns the new revision id.
func (v *GitVersioner) Commit(_ context.Context, path, message string) (string, error) {
	_, worktree, err := v.open(path)
	if err != nil {
		return "", &Error{Op: "commit", Path: path, Err: err}
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  v.committer.Name,
			Email: v.committer.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", &Error{Op: "commit", Path: path, Err: err}
	}

	return hash.String(), nil
}

// Push publishes local commits to the remote. Nothing to push is not an
// error.
func (v *GitVersioner) Push(ctx context.Context, path string) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return &Error{Op: "push", Path: path, Err: err}
	}

	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: v.remoteName,
		Auth:       v.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return &Error{Op: "push", Path: path, Err: err}
	}

	return nil
}

// RemoteExists reports whether a repository is reachable at url without
// cloning it.
func (v *GitVersioner) RemoteExists(ctx context.Context, url string) (bool, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: v.remoteName,
		URLs: []string{url},
	})

	_, err := remote.ListContext(ctx, &git.ListOptions{Auth: v.auth})
	if err != nil {
		if errors.Is(err, transport.ErrEmptyRemoteRepository) {
			return true, nil
		}

		if errors.Is(err, transport.ErrRepositoryNotFound) ||
			errors.Is(err, transport.ErrAuthenticationRequired) ||
			errors.Is(err, transport.ErrAuthorizationFailed) {
			return false, nil
		}

		return false, &Error{Op: "list-remote", Path: url, Err: err}
	}

	return true, nil
}

func (v *GitVersioner) open(path string) (*git.Repository, *git.Worktree, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, nil, fmt.Errorf("opening worktree: %w", err)
	}

	return repo, worktree, nil
}
