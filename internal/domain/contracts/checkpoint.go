// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package contracts

import (
	"context"
	"time"
)

// CleanupCheckpoint is the single persisted document recording how far the
// expired-share cleanup has progressed. Exactly one exists system-wide, under
// a well-known identifier.
type CleanupCheckpoint struct {
	// ID is always the well-known checkpoint document identifier.
	ID string `json:"id"`

	// HighWaterMark is the newest change-order value (updatedAt) fully
	// processed so far. It is monotonically non-decreasing across
	// successful runs.
	HighWaterMark time.Time `json:"highWaterMark"`

	// LastUpdated is stamped by the state store on every write.
	LastUpdated time.Time `json:"lastUpdated"`

	// LastRunProcessedCount is the number of shares cleaned by the run that
	// produced this checkpoint.
	LastRunProcessedCount int `json:"lastRunProcessedCount"`

	// LastRunAt is when that run started.
	LastRunAt time.Time `json:"lastRunAt"`
}

// CheckpointRepository is the durable, point-readable store for the single
// cleanup checkpoint.
type CheckpointRepository interface {
	// GetState returns the persisted checkpoint. If none exists yet it
	// returns a synthesized initial checkpoint (high-water mark of now-24h,
	// zero processed count) without persisting it; only UpdateState writes.
	GetState(ctx context.Context) (*CleanupCheckpoint, error)

	// UpdateState upserts the checkpoint, stamping LastUpdated with the
	// current time regardless of what the caller set. A failure here wraps
	// ErrStorageUnavailable and must surface to the invoker: a lost
	// checkpoint write risks reprocessing or skipping records next run.
	UpdateState(ctx context.Context, checkpoint *CleanupCheckpoint) error

	// HealthCheck checks connectivity to the underlying store.
	HealthCheck(ctx context.Context) error
}
