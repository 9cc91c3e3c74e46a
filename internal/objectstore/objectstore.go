// Package objectstore provides storage for uploaded video clips.
//
// The store is addressed by relative clip paths; callers persist the returned
// path on the video record and never touch the filesystem directly.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crowdwatch/crowdwatch-go/internal/errors"
)

// Constants for file operations
const (
	dirPermissions  = 0o755
	filePermissions = 0o644
	maxClipSize     = 2 * 1024 * 1024 * 1024 // 2GB
)

// Store abstracts the clip object storage.
type Store interface {
	// Put streams a clip into the store and returns its relative path.
	Put(ctx context.Context, name string, r io.Reader) (path string, size int64, err error)
	// Open returns a reader for a stored clip.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Remove deletes a stored clip.
	Remove(ctx context.Context, path string) error
}

// LocalStore implements Store on a local directory root.
type LocalStore struct {
	root string
	now  func() time.Time
}

// NewLocal creates a LocalStore rooted at the given directory, creating it
// if necessary. Relative roots are resolved against the working directory.
func NewLocal(root string) (*LocalStore, error) {
	if root == "" {
		return nil, errors.Newf("storage path must not be empty").
			Component("objectstore").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if !filepath.IsAbs(root) {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory to resolve storage path: %w", err)
		}
		root = filepath.Join(workDir, root)
	}

	if err := os.MkdirAll(root, dirPermissions); err != nil {
		return nil, errors.New(err).
			Component("objectstore").
			Category(errors.CategoryFileIO).
			Context("operation", "create_root").
			Build()
	}

	return &LocalStore{root: root, now: time.Now}, nil
}

// sanitizeName strips path components from an uploaded file name so a crafted
// name cannot escape the store root.
func sanitizeName(name string) string {
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		name = "clip"
	}
	return strings.ReplaceAll(name, "..", "")
}

// resolve validates a stored clip path and returns its absolute location.
func (s *LocalStore) resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) && full != s.root {
		return "", errors.Newf("clip path escapes storage root: %s", path).
			Component("objectstore").
			Category(errors.CategoryValidation).
			Build()
	}
	return full, nil
}

// Put stores a clip under a date-based subdirectory. The write goes through
// a temporary file and a rename so a failed upload never leaves a partial
// clip at the final path.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	relDir := s.now().Format("2006/01")
	relPath := filepath.ToSlash(filepath.Join(relDir, fmt.Sprintf("%d_%s", s.now().UnixNano(), sanitizeName(name))))

	fullPath, err := s.resolve(relPath)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), dirPermissions); err != nil {
		return "", 0, errors.New(err).
			Component("objectstore").
			Category(errors.CategoryFileIO).
			Context("operation", "create_clip_dir").
			Build()
	}

	tempFile, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return "", 0, errors.New(err).
			Component("objectstore").
			Category(errors.CategoryFileIO).
			Context("operation", "create_temp_file").
			Build()
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if err := tempFile.Chmod(filePermissions); err != nil {
		return "", 0, fmt.Errorf("failed to set clip permissions: %w", err)
	}

	size, err := io.Copy(tempFile, io.LimitReader(r, maxClipSize+1))
	if err != nil {
		return "", 0, errors.New(err).
			Component("objectstore").
			Category(errors.CategoryFileIO).
			Context("operation", "write_clip").
			Build()
	}
	if size > maxClipSize {
		return "", 0, errors.Newf("clip exceeds maximum size of %d bytes", maxClipSize).
			Component("objectstore").
			Category(errors.CategoryValidation).
			Build()
	}

	if err := tempFile.Sync(); err != nil {
		return "", 0, fmt.Errorf("failed to sync clip: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close clip: %w", err)
	}
	if err := os.Rename(tempPath, fullPath); err != nil {
		return "", 0, errors.New(err).
			Component("objectstore").
			Category(errors.CategoryFileIO).
			Context("operation", "rename_clip").
			Build()
	}

	success = true
	return relPath, size, nil
}

// Open returns a reader for a stored clip.
func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(err).
				Component("objectstore").
				Category(errors.CategoryNotFound).
				Context("clip_path", path).
				Build()
		}
		return nil, errors.New(err).
			Component("objectstore").
			Category(errors.CategoryFileIO).
			Context("operation", "open_clip").
			Build()
	}
	return f, nil
}

// Remove deletes a stored clip.
func (s *LocalStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return errors.New(err).
			Component("objectstore").
			Category(errors.CategoryFileIO).
			Context("operation", "remove_clip").
			Build()
	}
	return nil
}
