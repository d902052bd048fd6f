package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for an unknown blob id.
var ErrNotFound = errors.New("blob not found")

// Store holds attachment payloads. The ids it hands out are opaque to
// callers and never reused.
type Store interface {
	Put(ctx context.Context, r io.Reader, filename, contentType string) (Object, error)
	Get(ctx context.Context, id string) (io.ReadCloser, error)
	// Delete is best-effort, deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// Object describes a stored payload.
type Object struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
