package core

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

// BlobInfo describes a stored blob.
type BlobInfo struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

// Blob is an open stream over a stored blob. Callers must Close it.
type Blob struct {
	io.ReadCloser
	BlobInfo
}

//go:generate mockgen -destination=mocks/blob.go -package=mocks . BlobStore

// BlobStore stores and streams opaque byte payloads (submission files).
type BlobStore interface {
	// Put consumes r entirely and returns the id of the new blob.
	// A partially written blob is discarded when Put fails.
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Get returns ErrNotFound (via its cause) if id is unknown.
	Get(ctx context.Context, id string) (*Blob, error)
	Delete(ctx context.Context, id string) error
}

// ErrBlobNotFound is returned by BlobStores for unknown ids.
var ErrBlobNotFound = NotFoundError{Resource: "file"}

// ErrBlobTooLarge is returned by BlobStores that refuse payloads over their size limit.
var ErrBlobTooLarge = errors.New("file too large")
