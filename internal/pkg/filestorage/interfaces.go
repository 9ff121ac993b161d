package filestorage

import (
	"context"
	"io"
)

// BlobStore stores uploaded student photos keyed by filename
type BlobStore interface {
	// Save writes the content under name, replacing any previous blob
	Save(ctx context.Context, name string, content io.Reader) error

	// Delete removes a blob. Deleting a missing blob succeeds.
	Delete(ctx context.Context, name string) error

	// Rename moves a blob to a new name, replacing any blob already there
	Rename(ctx context.Context, from, to string) error

	// Exists reports whether a blob is stored under name
	Exists(ctx context.Context, name string) (bool, error)

	// URL returns the public path the blob is served under
	URL(name string) string
}
