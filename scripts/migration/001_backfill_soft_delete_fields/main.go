// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package main provides a data migration script to backfill the isDeleted
// flag on share documents created before soft delete was introduced.
//
// The expiry scan and the claim lookup both filter on isDeleted, and a term
// query never matches a document where the field is absent. Legacy documents
// without the flag are therefore invisible to cleanup until this backfill
// sets isDeleted=false on them.
//
// Usage:
//
//	go run scripts/migration/001_backfill_soft_delete_fields/main.go
//
// Environment variables:
//   - OPENSEARCH_URL: OpenSearch cluster URL (default: http://localhost:9200)
//   - OPENSEARCH_SHARES_INDEX: Target index name (default: shares)
//   - BATCH_SIZE: Number of documents to process per batch (default: 100)
//   - DRY_RUN: If true, only log what would be updated without making changes (default: false)
//   - SCROLL_TIMEOUT: Scroll context timeout (default: 5m)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/env"
)

// Config holds the migration configuration
type Config struct {
	OpenSearchURL string
	IndexName     string
	BatchSize     int
	DryRun        bool
	ScrollTimeout time.Duration
}

// Document represents a share document from OpenSearch
type Document struct {
	ID     string         `json:"_id"`
	Source DocumentSource `json:"_source"`
}

// DocumentSource carries only the fields the backfill inspects
type DocumentSource struct {
	ExpiresAt time.Time `json:"expiresAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SearchResponse represents the OpenSearch search response
type SearchResponse struct {
	ScrollID string `json:"_scroll_id,omitempty"`
	Hits     struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []Document `json:"hits"`
	} `json:"hits"`
}

// BulkResponse represents the OpenSearch bulk response
type BulkResponse struct {
	Took   int                      `json:"took"`
	Errors bool                     `json:"errors"`
	Items  []map[string]interface{} `json:"items"`
}

// Stats tracks migration statistics
type Stats struct {
	TotalDocuments     int
	ProcessedDocuments int
	UpdatedDocuments   int
	ErroredDocuments   int
	StartTime          time.Time
}

// loadConfig loads configuration from environment variables with defaults
func loadConfig() *Config {
	config := &Config{
		OpenSearchURL: env.GetString("OPENSEARCH_URL", "http://localhost:9200"),
		IndexName:     env.GetString("OPENSEARCH_SHARES_INDEX", constants.DefaultSharesIndex),
		BatchSize:     env.GetInt("BATCH_SIZE", 100),
		DryRun:        env.GetBool("DRY_RUN", false),
		ScrollTimeout: env.GetDuration("SCROLL_TIMEOUT", 5*time.Minute),
	}

	log.Println("=== Migration Configuration ===")
	log.Printf("  OpenSearch URL: %s", config.OpenSearchURL)
	log.Printf("  Index Name: %s", config.IndexName)
	log.Printf("  Batch Size: %d", config.BatchSize)
	log.Printf("  Dry Run: %t", config.DryRun)
	log.Printf("  Scroll Timeout: %v", config.ScrollTimeout)
	log.Println("==============================")

	return config
}

// createOpenSearchClient creates the client and verifies connectivity
func createOpenSearchClient(config *Config) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{config.OpenSearchURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenSearch client: %w", err)
	}

	info, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to OpenSearch: %w", err)
	}
	defer info.Body.Close()

	log.Println("Connected to OpenSearch successfully")
	return client, nil
}

// searchDocuments initiates a scroll search for documents missing the
// isDeleted flag
func searchDocuments(ctx context.Context, client *opensearch.Client, config *Config) (*SearchResponse, error) {
	searchBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": []map[string]interface{}{
					{"exists": map[string]interface{}{"field": "isDeleted"}},
				},
			},
		},
		"size":    config.BatchSize,
		"_source": []string{"expiresAt", "updatedAt"},
	}

	searchBodyJSON, err := json.Marshal(searchBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index:  []string{config.IndexName},
		Body:   strings.NewReader(string(searchBodyJSON)),
		Scroll: config.ScrollTimeout,
	}

	res, err := req.Do(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search request failed: %s", res.String())
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&searchResponse); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return &searchResponse, nil
}

// scrollDocuments continues scrolling through search results
func scrollDocuments(ctx context.Context, client *opensearch.Client, scrollID string, scrollTimeout time.Duration) (*SearchResponse, error) {
	scrollBody := map[string]interface{}{
		"scroll_id": scrollID,
		"scroll":    fmt.Sprintf("%dm", int(scrollTimeout.Minutes())),
	}

	scrollBodyJSON, err := json.Marshal(scrollBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scroll body: %w", err)
	}

	req := opensearchapi.ScrollRequest{
		Body: strings.NewReader(string(scrollBodyJSON)),
	}

	res, err := req.Do(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute scroll: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("scroll request failed: %s", res.String())
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&searchResponse); err != nil {
		return nil, fmt.Errorf("failed to parse scroll response: %w", err)
	}

	return &searchResponse, nil
}

// processBatch backfills isDeleted=false on a batch of documents
func processBatch(ctx context.Context, client *opensearch.Client, config *Config, documents []Document, stats *Stats) error {
	if len(documents) == 0 {
		return nil
	}

	var bulkBody strings.Builder
	updateCount := 0

	for _, doc := range documents {
		stats.ProcessedDocuments++

		if config.DryRun {
			log.Printf("[DRY RUN] Would set isDeleted=false on document %s (expires %s)",
				doc.ID, doc.Source.ExpiresAt.Format(time.RFC3339))
			stats.UpdatedDocuments++
			continue
		}

		bulkBody.WriteString(fmt.Sprintf(`{"update":{"_index":"%s","_id":"%s"}}`, config.IndexName, doc.ID))
		bulkBody.WriteString("\n")

		updateJSON, _ := json.Marshal(map[string]interface{}{
			"doc": map[string]interface{}{"isDeleted": false},
		})
		bulkBody.Write(updateJSON)
		bulkBody.WriteString("\n")

		updateCount++
	}

	if !config.DryRun && updateCount > 0 {
		req := opensearchapi.BulkRequest{
			Body: strings.NewReader(bulkBody.String()),
		}

		res, err := req.Do(ctx, client)
		if err != nil {
			stats.ErroredDocuments += updateCount
			return fmt.Errorf("failed to execute bulk update: %w", err)
		}
		defer res.Body.Close()

		if res.IsError() {
			stats.ErroredDocuments += updateCount
			return fmt.Errorf("bulk update failed: %s", res.String())
		}

		var bulkResponse BulkResponse
		if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
			return fmt.Errorf("failed to parse bulk response: %w", err)
		}

		if bulkResponse.Errors {
			errorCount := 0
			for _, item := range bulkResponse.Items {
				if update, ok := item["update"].(map[string]interface{}); ok {
					if _, hasError := update["error"]; hasError {
						errorCount++
					}
				}
			}
			stats.ErroredDocuments += errorCount
			stats.UpdatedDocuments += (updateCount - errorCount)
			return fmt.Errorf("bulk update had %d errors out of %d updates", errorCount, updateCount)
		}

		stats.UpdatedDocuments += updateCount
	}

	return nil
}

// clearScroll clears the scroll context
func clearScroll(ctx context.Context, client *opensearch.Client, scrollID string) {
	if scrollID == "" {
		return
	}

	req := opensearchapi.ClearScrollRequest{
		ScrollID: []string{scrollID},
	}

	if res, err := req.Do(ctx, client); err == nil {
		res.Body.Close()
	}
}

// printStats prints the migration statistics
func printStats(stats *Stats) {
	duration := time.Since(stats.StartTime)

	log.Println("\n=== Migration Statistics ===")
	log.Printf("Total Documents Found: %d", stats.TotalDocuments)
	log.Printf("Documents Processed: %d", stats.ProcessedDocuments)
	log.Printf("Documents Updated: %d", stats.UpdatedDocuments)
	log.Printf("Documents with Errors: %d", stats.ErroredDocuments)
	log.Printf("Duration: %v", duration)

	if stats.ProcessedDocuments > 0 {
		rate := float64(stats.ProcessedDocuments) / duration.Seconds()
		log.Printf("Processing Rate: %.2f docs/sec", rate)
	}
	log.Println("============================")
}

func main() {
	log.Println("Starting soft delete backfill migration...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	config := loadConfig()

	stats := &Stats{
		StartTime: time.Now(),
	}

	client, err := createOpenSearchClient(config)
	if err != nil {
		log.Fatalf("Failed to create OpenSearch client: %v", err)
	}

	log.Println("Searching for documents missing the isDeleted flag...")
	searchResponse, err := searchDocuments(ctx, client, config)
	if err != nil {
		log.Fatalf("Failed to search documents: %v", err)
	}

	stats.TotalDocuments = searchResponse.Hits.Total.Value
	log.Printf("Found %d documents that need backfill", stats.TotalDocuments)

	if stats.TotalDocuments == 0 {
		log.Println("No documents need migration. Exiting.")
		return
	}

	scrollID := searchResponse.ScrollID
	defer clearScroll(context.Background(), client, scrollID)

	batchNumber := 0
	for {
		select {
		case <-ctx.Done():
			log.Println("Migration cancelled by user")
			printStats(stats)
			return
		default:
		}

		if len(searchResponse.Hits.Hits) > 0 {
			batchNumber++
			log.Printf("\nProcessing batch %d (%d documents)...", batchNumber, len(searchResponse.Hits.Hits))

			if err := processBatch(ctx, client, config, searchResponse.Hits.Hits, stats); err != nil {
				log.Printf("Warning: Error processing batch %d: %v", batchNumber, err)
			}

			percentComplete := float64(stats.ProcessedDocuments) * 100 / float64(stats.TotalDocuments)
			log.Printf("Progress: %d/%d documents (%.1f%%)", stats.ProcessedDocuments, stats.TotalDocuments, percentComplete)
		}

		if len(searchResponse.Hits.Hits) < config.BatchSize {
			break
		}

		searchResponse, err = scrollDocuments(ctx, client, scrollID, config.ScrollTimeout)
		if err != nil {
			log.Printf("Warning: Failed to scroll documents: %v", err)
			break
		}

		if searchResponse.ScrollID != "" {
			scrollID = searchResponse.ScrollID
		}

		if len(searchResponse.Hits.Hits) == 0 {
			break
		}
	}

	printStats(stats)

	if config.DryRun {
		log.Println("\nDRY RUN COMPLETE: No actual changes were made")
		log.Println("  Run without DRY_RUN=true to apply changes")
	} else {
		log.Println("\nMigration completed successfully!")
	}
}
