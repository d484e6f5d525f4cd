// Package storage selects the raw-payload archive backend. Loaders only
// see the etl.BlobStore interface, so the toolkit runs the same against
// Google Cloud Storage, a local directory, or no archive at all.
package storage

import (
	"context"
	"fmt"

	gstorage "cloud.google.com/go/storage"

	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/storage/gcs"
	"github.com/stordev/sitescout/internal/storage/local"
)

// NewBlobStore builds the configured archive backend. The noop provider
// returns a nil store: archiving is skipped entirely.
func NewBlobStore(ctx context.Context, cfg config.StorageConfig) (etl.BlobStore, error) {
	switch cfg.Provider {
	case "gcs":
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		// Fail fast on startup when the bucket is missing or unreadable.
		if _, err := client.Bucket(cfg.Bucket).Attrs(ctx); err != nil {
			if closeErr := client.Close(); closeErr != nil {
				return nil, fmt.Errorf("bucket %q attributes: %w (close client: %v)", cfg.Bucket, err, closeErr)
			}
			return nil, fmt.Errorf("bucket %q attributes: %w", cfg.Bucket, err)
		}
		return gcs.New(client, gcs.Config{Bucket: cfg.Bucket})
	case "local":
		return local.New(local.Config{BaseDir: cfg.LocalDir})
	case "noop", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
