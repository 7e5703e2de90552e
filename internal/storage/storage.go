// Package storage defines where downloaded poster images are written.
// Implementations live in the local, gcs, and memory subpackages.
package storage

import (
	"context"
	"io"
)

// BlobStore writes a stream to path and returns a URI for the stored object.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}
