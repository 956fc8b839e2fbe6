package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Open when no object exists under the
// requested key.
var ErrObjectNotFound = errors.New("object not found in storage")

// ObjectStorage defines the interface for blob storage operations.
// Objects are written whole and are immutable once stored; keys are
// generated by the caller and treated as opaque here.
type ObjectStorage interface {
	// Put stores the object under key. The write is all-or-nothing: a
	// failed Put must not leave a partial object visible under key.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Open returns a reader over the stored object and its content type.
	// The caller owns the returned ReadCloser.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes an object. Used by out-of-band cleanup, never by
	// the ingestion path itself.
	Delete(ctx context.Context, key string) error
}
