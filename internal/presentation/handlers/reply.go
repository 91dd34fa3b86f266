// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// Reply is the envelope for all NATS request/reply responses.
type Reply struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// respondOK marshals data into a success reply and sends it
func respondOK(ctx context.Context, logger *slog.Logger, reply func([]byte) error, data any) {
	if reply == nil {
		return
	}
	log := logging.FromContext(ctx, logger)

	payload, err := json.Marshal(data)
	if err != nil {
		log.Error("Failed to marshal reply data", "error", err.Error())
		respondError(ctx, logger, reply, "internal error")
		return
	}

	body, err := json.Marshal(Reply{Status: constants.ReplyOKPrefix, Data: payload})
	if err != nil {
		log.Error("Failed to marshal reply envelope", "error", err.Error())
		return
	}
	if err := reply(body); err != nil {
		log.Error("Failed to send reply", "error", err.Error())
	}
}

// respondError sends an error reply
func respondError(ctx context.Context, logger *slog.Logger, reply func([]byte) error, message string) {
	if reply == nil {
		return
	}
	log := logging.FromContext(ctx, logger)

	body, err := json.Marshal(Reply{Status: constants.ReplyErrorPrefix, Error: message})
	if err != nil {
		log.Error("Failed to marshal error reply", "error", err.Error())
		return
	}
	if err := reply(body); err != nil {
		log.Error("Failed to send error reply", "error", err.Error())
	}
}
