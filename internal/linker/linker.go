// Package linker exposes product checkouts through symbolic links in the
// shared directory of a work area.
//
// Products are fetched into per-product folders; the shared directory holds
// one link per product so runtime code sees a flat layout. Links are
// relative, which keeps a work area relocatable as a whole.
package linker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/konverso-ai/kbot-installer/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrSourceMissing = errors.New("link source does not exist")
	ErrNotSymlink    = errors.New("path exists and is not a symbolic link")
)

// Error reports a failed link operation.
type Error struct {
	Op   string
	Name string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("linker: %s %s: %s", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Linker manages the symbolic links of one shared directory.
type Linker struct {
	sharedDir string
}

// New creates a linker over the given shared directory. The directory is
// created on the first Link call.
func New(sharedDir string) *Linker {
	return &Linker{sharedDir: sharedDir}
}

// SharedDir returns the directory the links live in.
func (l *Linker) SharedDir() string {
	return l.sharedDir
}

// Link exposes target under name in the shared directory. Re-linking is
// idempotent: a link already pointing at target is left alone, a link
// pointing elsewhere is replaced. A regular file or directory in the way
// is never touched.
func (l *Linker) Link(name, target string) error {
	if _, err := os.Stat(target); err != nil {
		return &Error{Op: "link", Name: name, Err: fmt.Errorf("%w: %s", ErrSourceMissing, target)}
	}

	if err := os.MkdirAll(l.sharedDir, constants.WorkAreaDirPerm); err != nil {
		return &Error{Op: "link", Name: name, Err: err}
	}

	relative, err := filepath.Rel(l.sharedDir, target)
	if err != nil {
		// Different volume roots; fall back to an absolute link.
		relative, err = filepath.Abs(target)
		if err != nil {
			return &Error{Op: "link", Name: name, Err: err}
		}
	}

	linkPath := filepath.Join(l.sharedDir, name)

	info, err := os.Lstat(linkPath)

	switch {
	case errors.Is(err, os.ErrNotExist):
		// Nothing in the way.
	case err != nil:
		return &Error{Op: "link", Name: name, Err: err}
	case info.Mode()&os.ModeSymlink == 0:
		return &Error{Op: "link", Name: name, Err: ErrNotSymlink}
	default:
		current, readErr := os.Readlink(linkPath)
		if readErr == nil && current == relative {
			return nil
		}

		if removeErr := os.Remove(linkPath); removeErr != nil {
			return &Error{Op: "link", Name: name, Err: removeErr}
		}
	}

	if err := os.Symlink(relative, linkPath); err != nil {
		return &Error{Op: "link", Name: name, Err: err}
	}

	return nil
}

// Unlink removes the link registered under name. A missing link is not an
// error; anything that is not a symbolic link is left alone.
func (l *Linker) Unlink(name string) error {
	linkPath := filepath.Join(l.sharedDir, name)

	info, err := os.Lstat(linkPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return &Error{Op: "unlink", Name: name, Err: err}
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return &Error{Op: "unlink", Name: name, Err: ErrNotSymlink}
	}

	if err := os.Remove(linkPath); err != nil {
		return &Error{Op: "unlink", Name: name, Err: err}
	}

	return nil
}

// Links returns the names of the symbolic links in the shared directory,
// sorted. A missing shared directory yields an empty list.
func (l *Linker) Links() ([]string, error) {
	entries, err := os.ReadDir(l.sharedDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, &Error{Op: "list", Name: l.sharedDir, Err: err}
	}

	var names []string

	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink != 0 {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)

	return names, nil
}

// Verify returns the names of links whose targets no longer exist, sorted.
func (l *Linker) Verify() ([]string, error) {
	names, err := l.Links()
	if err != nil {
		return nil, err
	}

	var broken []string

	for _, name := range names {
		if _, err := os.Stat(filepath.Join(l.sharedDir, name)); errors.Is(err, os.ErrNotExist) {
			broken = append(broken, name)
		}
	}

	return broken, nil
}
