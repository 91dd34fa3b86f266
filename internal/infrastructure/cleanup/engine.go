// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package cleanup implements the expired-share cleanup engine: an
// incremental, checkpointed scan that tombstones expired share records,
// deletes their blobs, and advances a persisted high-water mark.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/christopherhouse/web-content-share/internal/domain/contracts"
	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// Engine performs one incremental cleanup pass over expired shares.
//
// Each run reads the checkpoint, scans forward from its high-water mark in
// ascending change order, soft-deletes each record and hard-deletes its blob,
// and commits a new checkpoint only at the very end. A run interrupted
// partway leaves the old mark in place; the next run re-scans the same window,
// which is safe because per-record cleanup is idempotent.
type Engine struct {
	shares      contracts.ShareRepository
	checkpoints contracts.CheckpointRepository
	blobs       contracts.BlobRepository
	batchSize   int
	logger      *slog.Logger
}

// NewEngine creates a cleanup engine
func NewEngine(
	shares contracts.ShareRepository,
	checkpoints contracts.CheckpointRepository,
	blobs contracts.BlobRepository,
	batchSize int,
	logger *slog.Logger,
) *Engine {
	if batchSize <= 0 {
		batchSize = constants.DefaultCleanupBatchSize
	}
	return &Engine{
		shares:      shares,
		checkpoints: checkpoints,
		blobs:       blobs,
		batchSize:   batchSize,
		logger:      logging.WithComponent(logger, constants.ComponentCleanup),
	}
}

// RunCleanup executes one full cleanup pass and returns the number of shares
// cleaned. Checkpoint read/write failures and scan failures abort the run and
// propagate; a single record failing is logged, skipped, and retried on the
// next run.
func (e *Engine) RunCleanup(ctx context.Context) (int, error) {
	start := time.Now()
	logger := logging.FromContext(ctx, e.logger)

	state, err := e.checkpoints.GetState(ctx)
	if err != nil {
		cleanupRunsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("%s: %w", constants.ErrReadCheckpoint, err)
	}

	mark := state.HighWaterMark
	now := start.UTC()
	logger.Info("Cleanup run started", "high_water_mark", mark, "batch_size", e.batchSize)

	processed := 0
	failed := 0
	candidate := mark
	var cursor *contracts.PageCursor

	for {
		records, next, err := e.shares.FindExpired(ctx, mark, now, cursor, e.batchSize)
		if err != nil {
			cleanupRunsTotal.WithLabelValues("error").Inc()
			return processed, fmt.Errorf("%s: %w", constants.ErrScanExpired, err)
		}

		for i := range records {
			record := &records[i]
			if record.IsDeleted {
				// The scan filters tombstones out; seeing one here means
				// an overlapping run got to it first.
				continue
			}
			if err := e.cleanupRecord(ctx, record, now); err != nil {
				failed++
				cleanupRecordFailures.Inc()
				logger.Error("Failed to clean up expired share, will retry next run",
					"share_id", record.ID, "error", err.Error())
				continue
			}

			processed++
			if record.UpdatedAt.After(candidate) {
				candidate = record.UpdatedAt
			}
		}

		if next == nil {
			break
		}
		cursor = next
	}

	// The mark only moves forward. Always commit, even for an empty run, so
	// lastRunAt reflects the latest attempt.
	newMark := mark
	if candidate.After(mark) {
		newMark = candidate
	}
	checkpoint := &contracts.CleanupCheckpoint{
		ID:                    constants.CheckpointDocumentID,
		HighWaterMark:         newMark,
		LastRunProcessedCount: processed,
		LastRunAt:             now,
	}
	if err := e.checkpoints.UpdateState(ctx, checkpoint); err != nil {
		cleanupRunsTotal.WithLabelValues("error").Inc()
		return processed, fmt.Errorf("%s: %w", constants.ErrWriteCheckpoint, err)
	}

	cleanupRunsTotal.WithLabelValues("success").Inc()
	cleanupProcessedTotal.Add(float64(processed))
	cleanupDuration.Observe(time.Since(start).Seconds())

	logger.Info("Cleanup run completed",
		"processed_count", processed,
		"failed_count", failed,
		"high_water_mark", newMark,
		"duration", time.Since(start).String())
	return processed, nil
}

// cleanupRecord tombstones one record and deletes its blob. The metadata
// replace happens first: if the subsequent blob delete fails the record stays
// deleted and the blob is orphaned, which is preferable to re-deleting
// already-cleaned metadata on every run.
func (e *Engine) cleanupRecord(ctx context.Context, record *contracts.ShareRecord, now time.Time) error {
	record.MarkDeleted(now)
	if err := e.shares.Replace(ctx, record); err != nil {
		return fmt.Errorf("%s: %w", constants.ErrCleanupRecord, err)
	}

	if err := e.blobs.DeleteIfExists(ctx, record.BlobPath); err != nil {
		// Metadata already tombstoned; log the orphaned blob and move on.
		logging.FromContext(ctx, e.logger).Warn("Blob delete failed after soft delete, blob orphaned",
			"share_id", record.ID, "blob_path", record.BlobPath, "error", err.Error())
	}
	return nil
}
