package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Config configures LocalStorage.
type Config struct {
	BasePath string
	// MaxBytes caps a single file. Zero means unlimited.
	MaxBytes int64
}

// TooLargeError is returned when a file exceeds Config.MaxBytes.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file exceeds %d bytes", e.Limit)
}

// LocalStorage implements Storage on the local filesystem. Files are written
// to a temporary name and renamed, so a failed upload leaves nothing behind.
type LocalStorage struct {
	basePath string
	maxBytes int64
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(cfg Config) (*LocalStorage, error) {
	if cfg.BasePath == "" {
		cfg.BasePath = "data"
	}
	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: cfg.BasePath, maxBytes: cfg.MaxBytes}, nil
}

// BasePath returns the storage directory.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

func (s *LocalStorage) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.basePath, name), nil
}

// Save writes r to name, replacing any existing file.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (Object, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return Object{}, err
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: src})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Object{}, fmt.Errorf("failed to write file: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return Object{}, &TooLargeError{Limit: s.maxBytes}
	}

	if err := os.Rename(tmpName, fullPath); err != nil {
		return Object{}, fmt.Errorf("failed to store file: %w", err)
	}
	return Object{Name: name, Path: fullPath, Size: n}, nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
