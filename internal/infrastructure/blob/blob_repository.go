// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package blob provides binary content storage for shared files on the NATS
// JetStream object store.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// BlobRepository implements the domain BlobRepository interface on a
// JetStream object store bucket.
type BlobRepository struct {
	store  nats.ObjectStore
	bucket string
	logger *slog.Logger
}

// NewBlobRepository binds to the share bucket, creating it if it does not
// exist yet.
func NewBlobRepository(js nats.JetStreamContext, bucket string, logger *slog.Logger) (*BlobRepository, error) {
	store, err := js.ObjectStore(bucket)
	if errors.Is(err, nats.ErrStreamNotFound) {
		store, err = js.CreateObjectStore(&nats.ObjectStoreConfig{
			Bucket:      bucket,
			Description: "shared file content",
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open object store bucket %s: %w", bucket, err)
	}

	return &BlobRepository{
		store:  store,
		bucket: bucket,
		logger: logging.WithComponent(logger, constants.ComponentBlobStore),
	}, nil
}

// Put stores the blob under path, overwriting any existing object.
func (r *BlobRepository) Put(ctx context.Context, path string, data io.Reader) (int64, error) {
	logger := logging.FromContext(ctx, r.logger)
	logger.Debug("Storing blob", "path", path, "bucket", r.bucket)

	info, err := r.store.Put(&nats.ObjectMeta{Name: path}, data, nats.Context(ctx))
	if err != nil {
		logger.Error("Failed to store blob", "path", path, "error", err.Error())
		return 0, fmt.Errorf("%s: %w", constants.ErrPutBlob, err)
	}

	logger.Debug("Blob stored", "path", path, "size", info.Size)
	return int64(info.Size), nil
}

// DeleteIfExists removes the blob at path. A missing object is not an error:
// the interactive delete and the cleanup engine may race on the same blob.
func (r *BlobRepository) DeleteIfExists(ctx context.Context, path string) error {
	logger := logging.FromContext(ctx, r.logger)
	logger.Debug("Deleting blob", "path", path, "bucket", r.bucket)

	err := r.store.Delete(path)
	if err != nil {
		if errors.Is(err, nats.ErrObjectNotFound) {
			logger.Debug("Blob already absent", "path", path)
			return nil
		}
		logger.Error("Failed to delete blob", "path", path, "error", err.Error())
		return fmt.Errorf("%s: %w", constants.ErrDeleteBlob, err)
	}

	logger.Debug("Blob deleted", "path", path)
	return nil
}

// HealthCheck verifies the bucket is reachable.
func (r *BlobRepository) HealthCheck(_ context.Context) error {
	if _, err := r.store.Status(); err != nil {
		return fmt.Errorf("%s: %w", constants.ErrHealthCheck, err)
	}
	return nil
}
