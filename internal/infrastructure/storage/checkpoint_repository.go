// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/christopherhouse/web-content-share/internal/domain/contracts"
	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// initialLookback bounds the first-ever cleanup scan: a missing checkpoint is
// synthesized with a high-water mark of now minus this window instead of the
// epoch, so the first run does not walk unbounded history.
const initialLookback = 24 * time.Hour

// CheckpointRepository stores the single cleanup checkpoint document in a
// dedicated OpenSearch index, so fetching it is always a point read.
type CheckpointRepository struct {
	client *opensearch.Client
	index  string
	logger *slog.Logger
}

// NewCheckpointRepository creates a new OpenSearch checkpoint repository
func NewCheckpointRepository(client *opensearch.Client, index string, logger *slog.Logger) *CheckpointRepository {
	return &CheckpointRepository{
		client: client,
		index:  index,
		logger: logging.WithComponent(logger, "checkpoint"),
	}
}

// initialCheckpoint synthesizes the checkpoint used when none has been
// persisted yet. It is returned to the caller but never written here; only
// UpdateState persists.
func initialCheckpoint(now time.Time) *contracts.CleanupCheckpoint {
	return &contracts.CleanupCheckpoint{
		ID:                    constants.CheckpointDocumentID,
		HighWaterMark:         now.Add(-initialLookback),
		LastUpdated:           now,
		LastRunProcessedCount: 0,
		LastRunAt:             now,
	}
}

// GetState returns the persisted checkpoint, or a synthesized initial one if
// the document does not exist yet.
func (r *CheckpointRepository) GetState(ctx context.Context) (*contracts.CleanupCheckpoint, error) {
	logger := logging.FromContext(ctx, r.logger)

	req := opensearchapi.GetRequest{
		Index:      r.index,
		DocumentID: constants.CheckpointDocumentID,
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		logger.Error("Failed to read cleanup checkpoint", "error", err.Error())
		return nil, fmt.Errorf("%s: %w", constants.ErrReadCheckpoint, contracts.ErrStorageUnavailable)
	}
	defer res.Body.Close()

	if res.IsError() {
		if strings.Contains(res.Status(), "404") {
			state := initialCheckpoint(time.Now().UTC())
			logger.Info("No cleanup checkpoint found, using initial state",
				"high_water_mark", state.HighWaterMark)
			return state, nil
		}
		logger.Error("Checkpoint read failed", "status", res.Status())
		return nil, fmt.Errorf("%s: %s", constants.ErrReadCheckpoint, res.Status())
	}

	var response struct {
		Found  bool                        `json:"found"`
		Source contracts.CleanupCheckpoint `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrDecodeResponse, err)
	}
	if !response.Found {
		return initialCheckpoint(time.Now().UTC()), nil
	}

	logger.Debug("Checkpoint loaded",
		"high_water_mark", response.Source.HighWaterMark,
		"last_run_at", response.Source.LastRunAt)
	return &response.Source, nil
}

// UpdateState upserts the checkpoint. LastUpdated is stamped here as a side
// effect, independent of what the caller set.
func (r *CheckpointRepository) UpdateState(ctx context.Context, checkpoint *contracts.CleanupCheckpoint) error {
	logger := logging.FromContext(ctx, r.logger)

	checkpoint.ID = constants.CheckpointDocumentID
	checkpoint.LastUpdated = time.Now().UTC()

	body, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("%s: %w", constants.ErrMarshalDocument, err)
	}

	req := opensearchapi.IndexRequest{
		Index:      r.index,
		DocumentID: constants.CheckpointDocumentID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		logger.Error("Failed to write cleanup checkpoint", "error", err.Error())
		return fmt.Errorf("%s: %w", constants.ErrWriteCheckpoint, contracts.ErrStorageUnavailable)
	}
	defer res.Body.Close()

	if res.IsError() {
		logger.Error("Checkpoint write failed", "status", res.Status())
		return fmt.Errorf("%s: %s", constants.ErrWriteCheckpoint, res.Status())
	}

	logger.Debug("Checkpoint updated",
		"high_water_mark", checkpoint.HighWaterMark,
		"processed_count", checkpoint.LastRunProcessedCount)
	return nil
}

// HealthCheck checks the health of the OpenSearch connection
func (r *CheckpointRepository) HealthCheck(ctx context.Context) error {
	req := opensearchapi.InfoRequest{}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("%s: %w", constants.ErrHealthCheck, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%s: %s", constants.ErrHealthCheck, res.Status())
	}
	return nil
}
