// Package storage contains the polymorphic blob storage abstraction for voice
// assets and its three interchangeable variants: a remote bucket with fallback
// provisioning, a local-disk store delegating to the upload gateway over HTTP,
// and an inline encoder that embeds the blob in the metadata row itself.
// The deployment configuration picks the concrete variant once at startup;
// the orchestrator depends only on the interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pbxadmin/internal/config"
	"pbxadmin/internal/model"
)

// ErrUnavailable is returned by Put once a variant's entire fallback chain is
// exhausted. No metadata write may follow a Put that returns it.
var ErrUnavailable = errors.New("asset storage unavailable")

// PutOptions carries optional upload parameters. Size should be the exact
// number of bytes if known; ContentType is the declared MIME type.
type PutOptions struct {
	Size        int64
	ContentType string
}

// BlobStore persists asset bytes and yields a durable reference usable to
// retrieve or delete the blob later. Implementations must be safe for
// concurrent use.
type BlobStore interface {
	// Put stores the content under the given key and returns the reference
	// the metadata row should carry. On error, nothing retrievable was stored.
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (model.StorageReference, error)

	// Delete removes the blob a reference points at. Callers treat failures
	// as non-fatal; implementations should still report them.
	Delete(ctx context.Context, ref model.StorageReference) error
}

// FromConfig selects and constructs the blob store variant named by
// cfg.StorageBackend. Called once at startup, never per request.
func FromConfig(cfg *config.AppConfig) (BlobStore, error) {
	switch cfg.StorageBackend {
	case "bucket":
		return NewBucket(cfg.MinIO)
	case "disk":
		return NewDisk(cfg.Upload), nil
	case "inline":
		return NewInline(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
