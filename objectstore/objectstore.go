// Package objectstore keeps uploaded images in MinIO or on local disk.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"time"
)

var (
	ErrNotFound    = errors.New("object not found")
	ErrInvalidName = errors.New("invalid object name")
)

type Object struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"last_modified"`
}

type Store interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (*Object, error)
	// Get returns a reader the caller must close.
	Get(ctx context.Context, name string) (io.ReadCloser, *Object, error)
	List(ctx context.Context) ([]Object, error)
	Delete(ctx context.Context, name string) error
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// CleanName rejects names that are not a single safe path segment.
func CleanName(name string) (string, error) {
	if !validName.MatchString(name) || path.Base(name) != name || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
