// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package main provides a one-shot expired-share cleanup job, intended for
// cron or Kubernetes Job execution alongside (or instead of) the in-process
// scheduler.
package main

import (
	"context"
	"os"

	natsgo "github.com/nats-io/nats.go"
	opensearchgo "github.com/opensearch-project/opensearch-go/v2"

	"github.com/christopherhouse/web-content-share/internal/infrastructure/blob"
	"github.com/christopherhouse/web-content-share/internal/infrastructure/cleanup"
	"github.com/christopherhouse/web-content-share/internal/infrastructure/config"
	"github.com/christopherhouse/web-content-share/internal/infrastructure/storage"
	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

func main() {
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", "error", err.Error())
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("Cleanup job starting",
		"shares_index", cfg.OpenSearch.SharesIndex,
		"state_index", cfg.OpenSearch.CleanupStateIndex,
		"batch_size", cfg.Cleanup.BatchSize)

	opensearchClient, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses: []string{cfg.OpenSearch.URL},
	})
	if err != nil {
		logger.Error("Failed to create OpenSearch client", "error", err.Error())
		os.Exit(1)
	}

	natsConn, err := natsgo.Connect(
		cfg.NATS.URL,
		natsgo.Name(constants.ServiceName+"-cleanup-job"),
		natsgo.MaxReconnects(cfg.NATS.MaxReconnects),
		natsgo.ReconnectWait(cfg.NATS.ReconnectWait),
		natsgo.Timeout(cfg.NATS.ConnectionTimeout),
	)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err.Error())
		os.Exit(1)
	}
	defer natsConn.Close()

	js, err := natsConn.JetStream()
	if err != nil {
		logger.Error("Failed to create JetStream context", "error", err.Error())
		os.Exit(1)
	}

	blobRepo, err := blob.NewBlobRepository(js, cfg.Blob.Bucket, logger)
	if err != nil {
		logger.Error("Failed to create blob repository", "error", err.Error())
		os.Exit(1)
	}

	shares := storage.NewShareRepository(opensearchClient, cfg.OpenSearch.SharesIndex, logger)
	checkpoints := storage.NewCheckpointRepository(opensearchClient, cfg.OpenSearch.CleanupStateIndex, logger)

	engine := cleanup.NewEngine(shares, checkpoints, blobRepo, cfg.Cleanup.BatchSize, logger)

	ctx, requestLogger := logging.WithRequestID(context.Background(), logger)
	processed, err := engine.RunCleanup(ctx)
	if err != nil {
		requestLogger.Error("Cleanup run failed", "error", err.Error(), "processed_count", processed)
		os.Exit(1)
	}

	requestLogger.Info("Cleanup run completed", "processed_count", processed)
}
