package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// localStorage implements ObjectStorage on a flat directory on disk.
// Keys map directly to filenames inside the directory.
type localStorage struct {
	dir string
}

// NewLocalStorage creates the upload directory if needed and returns a
// disk-backed object store rooted there.
func NewLocalStorage(dir string) (ObjectStorage, error) {
	if dir == "" {
		return nil, errors.New("local storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &localStorage{dir: dir}, nil
}

// Put writes to a temporary file and renames it into place, so a failed
// write never leaves a partial object under key. An existing object is
// never overwritten; a key collision surfaces as an error.
func (l *localStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("object %q already exists", key)
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write object %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write object %q: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store object %q: %w", key, err)
	}
	return nil
}

// Open returns the stored file. The content type is inferred from the
// key's extension since the filesystem keeps no metadata.
func (l *localStorage) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	path, err := l.resolve(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("open object %q: %w", key, err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return f, contentType, nil
}

// Delete removes the stored file. Deleting a missing key is not an error.
func (l *localStorage) Delete(ctx context.Context, key string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

// resolve maps a key to a path inside the storage directory. Keys are
// single flat names; anything carrying a path separator would escape
// the directory and is rejected.
func (l *localStorage) resolve(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.dir, key), nil
}
