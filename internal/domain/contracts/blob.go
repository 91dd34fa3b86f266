// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package contracts

import (
	"context"
	"io"
)

// BlobRepository is the binary content store backing share records, keyed by
// the record's blob path.
type BlobRepository interface {
	// Put stores the blob under path and returns the number of bytes
	// written. An existing blob at the same path is overwritten.
	Put(ctx context.Context, path string, data io.Reader) (int64, error)

	// DeleteIfExists removes the blob at path. Deleting an already-missing
	// blob is not an error.
	DeleteIfExists(ctx context.Context, path string) error

	// HealthCheck checks connectivity to the underlying store.
	HealthCheck(ctx context.Context) error
}
