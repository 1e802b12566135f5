package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/moling/userservice/config"
)

// LocalBackend maps object keys onto a sandboxed directory tree. Keys that
// would escape the root are rejected with ErrInvalidKey before any
// filesystem access.
type LocalBackend struct {
	root string
}

// NewLocalBackend constructs a local backend rooted at the configured
// directory, creating it if necessary.
func NewLocalBackend(cfg config.LocalConfig) (*LocalBackend, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("local storage directory is required")
	}
	root, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalBackend{root: root}, nil
}

// EnsureBucket ensures the storage root exists.
func (l *LocalBackend) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(l.root, 0o755)
}

// Put writes an object under the storage root. The write goes to a temporary
// file first and is renamed into place, so readers never observe a partial
// object. The content type is not persisted; callers derive it from the key.
func (l *LocalBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	path, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

// Get opens a reader for an object under the storage root.
func (l *LocalBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes an object under the storage root.
func (l *LocalBackend) Delete(ctx context.Context, key string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrObjectNotFound
		}
		return err
	}
	return nil
}

// Exists reports whether an object is present under the storage root.
func (l *LocalBackend) Exists(ctx context.Context, key string) (bool, error) {
	path, err := l.resolve(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Bucket returns the storage root directory.
func (l *LocalBackend) Bucket() string {
	return l.root
}

// resolve turns a key into an absolute path strictly inside the root.
func (l *LocalBackend) resolve(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	path := filepath.Join(l.root, filepath.FromSlash(key))
	if path != l.root && !strings.HasPrefix(path, l.root+string(os.PathSeparator)) {
		return "", ErrInvalidKey
	}
	return path, nil
}
