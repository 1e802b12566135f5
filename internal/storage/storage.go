// Package storage provides one object-storage contract over S3, MinIO, GCS,
// and local-filesystem backends. Backend differences are configuration-time
// concerns; callers see identical put/get/delete/exists semantics.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/moling/userservice/config"
)

// ErrObjectNotFound is returned when the addressed object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that are empty, absolute, or would
// escape the storage root.
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Bucket() string
}

// Storage wraps an ObjectStorage backend with a stable API, a per-call
// timeout, and bounded retries for transient failures. Not-found and
// invalid-key outcomes are never retried.
type Storage struct {
	backend ObjectStorage
	timeout time.Duration
	retries int
}

// New selects and constructs the configured backend, wrapping it for use by
// the rest of the process. The selection happens once; the returned handle is
// immutable for the process lifetime.
func New(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch cfg.Backend {
	case config.BackendMinio:
		backend, err = NewMinioBackend(cfg.Minio)
	case config.BackendS3:
		backend, err = NewS3Backend(ctx, cfg.S3)
	case config.BackendGCS:
		backend, err = NewGCSBackend(ctx, cfg.GCS)
	case config.BackendLocal:
		backend, err = NewLocalBackend(cfg.Local)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewStorage(backend, cfg.Timeout, cfg.Retries), nil
}

// NewStorage wraps the provided backend. A zero timeout disables the per-call
// deadline; retries below zero are treated as zero.
func NewStorage(backend ObjectStorage, timeout time.Duration, retries int) *Storage {
	if retries < 0 {
		retries = 0
	}
	return &Storage{backend: backend, timeout: timeout, retries: retries}
}

// EnsureBucket ensures the configured bucket (or directory root) exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.backend.EnsureBucket(ctx)
	})
}

// Put uploads an object and returns its backend-specific location. The body
// is taken as bytes so a transient failure can be retried with a fresh
// reader.
func (s *Storage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	var location string
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		location, err = s.backend.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
		return err
	})
	return location, err
}

// Get reads the full object body. Missing objects yield ErrObjectNotFound.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	var data []byte
	err := s.do(ctx, func(ctx context.Context) error {
		rc, err := s.backend.Get(ctx, key)
		if err != nil {
			return err
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes an object. Deleting a missing object yields
// ErrObjectNotFound on every backend.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.do(ctx, func(ctx context.Context) error {
		return s.backend.Delete(ctx, key)
	})
}

// Exists reports whether the object is present. Absence is not an error.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	var found bool
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		found, err = s.backend.Exists(ctx, key)
		return err
	})
	return found, err
}

// Bucket returns the configured bucket name (or directory root).
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

// do runs op under the per-call timeout, retrying transient failures with
// doubling backoff up to the configured attempt budget.
func (s *Storage) do(ctx context.Context, op func(context.Context) error) error {
	backoff := 100 * time.Millisecond
	var err error
	for attempt := 0; ; attempt++ {
		err = s.once(ctx, op)
		if err == nil || !retryable(err) || attempt >= s.retries {
			return err
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}

func (s *Storage) once(ctx context.Context, op func(context.Context) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return op(ctx)
}

func retryable(err error) bool {
	if errors.Is(err, ErrObjectNotFound) || errors.Is(err, ErrInvalidKey) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
