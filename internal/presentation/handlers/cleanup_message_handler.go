// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"log/slog"

	"github.com/christopherhouse/web-content-share/internal/infrastructure/cleanup"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// CleanupRunResult is the reply payload of a triggered cleanup run.
type CleanupRunResult struct {
	ProcessedCount int `json:"processedCount"`
}

// CleanupMessageHandler triggers a cleanup run on request. The subject is
// internal (operators and the scheduled job), so there is no token check.
type CleanupMessageHandler struct {
	engine *cleanup.Engine
	logger *slog.Logger
}

// NewCleanupMessageHandler creates a new cleanup message handler
func NewCleanupMessageHandler(engine *cleanup.Engine, logger *slog.Logger) *CleanupMessageHandler {
	return &CleanupMessageHandler{
		engine: engine,
		logger: logging.WithComponent(logger, "cleanup_handler"),
	}
}

// Handle processes cleanup triggers without reply support
func (h *CleanupMessageHandler) Handle(ctx context.Context, data []byte, subject string) error {
	return h.HandleWithReply(ctx, data, subject, nil)
}

// HandleWithReply runs one cleanup pass and replies with the processed count
func (h *CleanupMessageHandler) HandleWithReply(ctx context.Context, _ []byte, subject string, reply func([]byte) error) error {
	logger := logging.FromContext(ctx, h.logger)
	logger.Info("Cleanup run triggered", "subject", subject)

	count, err := h.engine.RunCleanup(ctx)
	if err != nil {
		logger.Error("Triggered cleanup run failed", "error", err.Error())
		respondError(ctx, h.logger, reply, err.Error())
		return err
	}

	respondOK(ctx, h.logger, reply, CleanupRunResult{ProcessedCount: count})
	return nil
}
