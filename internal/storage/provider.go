// Package storage abstracts the object store holding session recordings
// and published audio.
package storage

import (
	"context"
	"io"
)

type BlobStore interface {
	// Download streams the object at key. Caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}
