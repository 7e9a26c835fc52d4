package provider

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/konverso-ai/kbot-installer/internal/constants"
)

// extractTarGz unpacks an in-memory tar.gz archive into target,
// validating every entry path before it touches the filesystem.
func extractTarGz(data []byte, target string) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(target, constants.WorkAreaDirPerm); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	reader := tar.NewReader(gz)

	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		path, err := securePath(target, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, constants.WorkAreaDirPerm); err != nil {
				return fmt.Errorf("creating %s: %w", header.Name, err)
			}
		case tar.TypeReg:
			if err := writeEntry(path, reader, header.FileInfo().Mode()); err != nil {
				return fmt.Errorf("writing %s: %w", header.Name, err)
			}
		case tar.TypeSymlink:
			if err := writeSymlink(target, path, header.Linkname); err != nil {
				return err
			}
		case tar.TypeXGlobalHeader:
			// git archive emits one of these first, nothing to write.
		default:
			return fmt.Errorf("%w: %s", constants.ErrNotRegularFile, header.Name)
		}
	}
}

// securePath joins an archive entry name onto the target directory and
// rejects names that would escape it.
func securePath(target, name string) (string, error) {
	cleaned := filepath.Clean(name)

	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %s", constants.ErrDirectoryTraversalDetected, name)
	}

	return filepath.Join(target, cleaned), nil
}

func writeEntry(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.WorkAreaDirPerm); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}

	// #nosec G110 -- archives come from the configured product repository
	if _, err := io.Copy(f, r); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// writeSymlink creates the link after checking that its resolved target
// stays inside the extraction directory.
func writeSymlink(target, path, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(path), linkname)
	}

	prefix := filepath.Clean(target) + string(os.PathSeparator)
	if !strings.HasPrefix(filepath.Clean(resolved)+string(os.PathSeparator), prefix) {
		return fmt.Errorf("%w: %s", constants.ErrDirectoryTraversalDetected, linkname)
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.WorkAreaDirPerm); err != nil {
		return err
	}

	if err := os.Symlink(linkname, path); err != nil {
		return fmt.Errorf("linking %s: %w", path, err)
	}

	return nil
}
