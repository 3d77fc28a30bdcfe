// Package storage handles delivery of rendered output files. It defines
// the Uploader port and an S3-backed implementation; local output needs no
// storage layer since the renderer writes it in place.
package storage

import (
	"context"
	"io"
)

// Uploader publishes a rendered file to remote storage.
type Uploader interface {
	// Upload stores data under the given key and returns the public URL.
	Upload(ctx context.Context, key string, data io.Reader) (url string, err error)
}
