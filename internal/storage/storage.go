// Package storage keeps uploaded avatar images in an object store and hands
// back the public URL under which each object is served.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/dom/sticky-notes/internal/config"
)

// ObjectStore persists opaque objects addressed by slash-separated keys.
type ObjectStore interface {
	// Put stores size bytes read from body under key and returns the public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New returns the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case config.StorageDriverLocal, "":
		return NewLocalStore(cfg.UploadDir, cfg.PublicUploadPath)
	case config.StorageDriverS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
