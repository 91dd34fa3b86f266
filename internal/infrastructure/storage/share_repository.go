// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package storage provides OpenSearch-backed persistence for share records
// and the cleanup checkpoint.
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

// ShareRepository implements the domain ShareRepository interface on OpenSearch
type ShareRepository struct {
	client *opensearch.Client
	index  string
	logger *slog.Logger
}

// NewShareRepository creates a new OpenSearch share repository
func NewShareRepository(client *opensearch.Client, index string, logger *slog.Logger) *ShareRepository {
	return &ShareRepository{
		client: client,
		index:  index,
		logger: logging.WithComponent(logger, constants.ComponentOpenSearch),
	}
}

// Create stores a new share record
func (r *ShareRepository) Create(ctx context.Context, record *contracts.ShareRecord) error {
	logger := logging.FromContext(ctx, r.logger)
	logger.Debug("Creating share record", "share_id", record.ID, "owner_id", record.OwnerID)

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%s: %w", constants.ErrMarshalDocument, err)
	}

	req := opensearchapi.CreateRequest{
		Index:      r.index,
		DocumentID: record.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		logger.Error("Failed to index share record", "error", err.Error())
		return fmt.Errorf("%s: %w", constants.ErrIndexDocument, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		logger.Error("Create request failed", "status", res.Status())
		return fmt.Errorf("%s: %s", constants.ErrIndexDocument, res.Status())
	}

	logger.Debug("Share record created", "share_id", record.ID, "status", res.Status())
	return nil
}

// Replace overwrites an existing record by its ID
func (r *ShareRepository) Replace(ctx context.Context, record *contracts.ShareRecord) error {
	logger := logging.FromContext(ctx, r.logger)
	logger.Debug("Replacing share record", "share_id", record.ID)

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%s: %w", constants.ErrMarshalDocument, err)
	}

	req := opensearchapi.IndexRequest{
		Index:      r.index,
		DocumentID: record.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		logger.Error("Failed to replace share record", "error", err.Error())
		return fmt.Errorf("%s: %w", constants.ErrIndexDocument, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		logger.Error("Replace request failed", "status", res.Status())
		return fmt.Errorf("%s: %s", constants.ErrIndexDocument, res.Status())
	}

	logger.Debug("Share record replaced", "share_id", record.ID, "status", res.Status())
	return nil
}

// Get fetches one record by ID within an owner scope
func (r *ShareRepository) Get(ctx context.Context, id, ownerID string) (*contracts.ShareRecord, error) {
	logger := logging.FromContext(ctx, r.logger)
	logger.Debug("Fetching share record", "share_id", id, "owner_id", ownerID)

	req := opensearchapi.GetRequest{
		Index:      r.index,
		DocumentID: id,
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		logger.Error("Failed to get share record", "error", err.Error())
		return nil, fmt.Errorf("%s: %w", constants.ErrGetDocument, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if strings.Contains(res.Status(), "404") {
			return nil, contracts.ErrShareNotFound
		}
		logger.Error("Get request failed", "status", res.Status())
		return nil, fmt.Errorf("%s: %s", constants.ErrGetDocument, res.Status())
	}

	var response struct {
		Found  bool                  `json:"found"`
		Source contracts.ShareRecord `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrDecodeResponse, err)
	}

	if !response.Found || response.Source.OwnerID != ownerID {
		// A record owned by someone else is indistinguishable from absent.
		return nil, contracts.ErrShareNotFound
	}

	return &response.Source, nil
}

// FindByEncryptedCode returns the live record matching an encrypted share code
func (r *ShareRepository) FindByEncryptedCode(ctx context.Context, encryptedCode string, now time.Time) (*contracts.ShareRecord, error) {
	query := map[string]any{
		"size": 1,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"encryptedShareCode": encryptedCode}},
					{"term": map[string]any{"isDeleted": false}},
					{"range": map[string]any{"expiresAt": map[string]any{"gt": now.UTC().Format(time.RFC3339Nano)}}},
				},
			},
		},
	}

	records, _, err := r.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, contracts.ErrShareNotFound
	}
	return &records[0], nil
}

// ListByOwner returns the owner's non-deleted records, newest first
func (r *ShareRepository) ListByOwner(ctx context.Context, ownerID string) ([]contracts.ShareRecord, error) {
	query := map[string]any{
		"size": 1000,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"ownerId": ownerID}},
					{"term": map[string]any{"isDeleted": false}},
				},
			},
		},
		"sort": []map[string]any{
			{"createdAt": map[string]any{"order": "desc"}},
		},
	}

	records, _, err := r.search(ctx, query)
	return records, err
}

// FindExpired returns one page of records needing cleanup, in ascending
// change order. The expiresAt disjunct re-considers records whose expiry is
// newer than the mark even when their change order is not, so clock skew or
// late writes cannot silently skip them.
func (r *ShareRepository) FindExpired(ctx context.Context, mark, now time.Time, after *contracts.PageCursor, size int) ([]contracts.ShareRecord, *contracts.PageCursor, error) {
	markStr := mark.UTC().Format(time.RFC3339Nano)
	query := map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"range": map[string]any{"expiresAt": map[string]any{"lt": now.UTC().Format(time.RFC3339Nano)}}},
					{"term": map[string]any{"isDeleted": false}},
				},
				"should": []map[string]any{
					{"range": map[string]any{"updatedAt": map[string]any{"gt": markStr}}},
					{"range": map[string]any{"expiresAt": map[string]any{"gt": markStr}}},
				},
				"minimum_should_match": 1,
			},
		},
		"sort": []map[string]any{
			{"updatedAt": map[string]any{"order": "asc"}},
			{"id": map[string]any{"order": "asc"}},
		},
	}
	if after != nil {
		query["search_after"] = after.SortValues
	}

	records, cursor, err := r.search(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	if len(records) < size {
		// Short page: the scan is complete.
		cursor = nil
	}
	return records, cursor, nil
}

// search runs a query against the shares index and returns the matching
// records plus a cursor positioned after the last hit.
func (r *ShareRepository) search(ctx context.Context, query map[string]any) ([]contracts.ShareRecord, *contracts.PageCursor, error) {
	logger := logging.FromContext(ctx, r.logger)

	queryBytes, err := json.Marshal(query)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", constants.ErrMarshalQuery, err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{r.index},
		Body:  bytes.NewReader(queryBytes),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		logger.Error("Search request failed", "error", err.Error())
		return nil, nil, fmt.Errorf("%s: %w", constants.ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		logger.Error("Search response error", "status", res.Status())
		return nil, nil, fmt.Errorf("%s: %s", constants.ErrSearchFailed, res.Status())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source contracts.ShareRecord `json:"_source"`
				Sort   []any                 `json:"sort"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		logger.Error("Failed to decode response", "error", err.Error())
		return nil, nil, fmt.Errorf("%s: %w", constants.ErrDecodeResponse, err)
	}

	records := make([]contracts.ShareRecord, 0, len(response.Hits.Hits))
	var cursor *contracts.PageCursor
	for _, hit := range response.Hits.Hits {
		records = append(records, hit.Source)
		if len(hit.Sort) > 0 {
			cursor = &contracts.PageCursor{SortValues: hit.Sort}
		}
	}

	logger.Debug("Search completed", "result_count", len(records))
	return records, cursor, nil
}

// HealthCheck checks the health of the OpenSearch connection
func (r *ShareRepository) HealthCheck(ctx context.Context) error {
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
