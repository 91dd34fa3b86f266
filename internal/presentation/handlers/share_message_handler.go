// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/christopherhouse/web-content-share/internal/domain/contracts"
	"github.com/christopherhouse/web-content-share/internal/domain/services"
	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// ShareRequest is the NATS request envelope for share operations. Token is
// the caller's bearer token; which payload fields matter depends on the
// subject.
type ShareRequest struct {
	Token string `json:"token,omitempty"`

	Create    *services.CreateShareRequest `json:"create,omitempty"`
	ShareCode string                       `json:"shareCode,omitempty"`
	ShareID   string                       `json:"shareId,omitempty"`
}

// ShareMessageHandler serves the share API over NATS request/reply
type ShareMessageHandler struct {
	shareService *services.ShareService
	authRepo     contracts.AuthRepository
	logger       *slog.Logger
}

// NewShareMessageHandler creates a new share message handler
func NewShareMessageHandler(shareService *services.ShareService, authRepo contracts.AuthRepository, logger *slog.Logger) *ShareMessageHandler {
	return &ShareMessageHandler{
		shareService: shareService,
		authRepo:     authRepo,
		logger:       logging.WithComponent(logger, "share_handler"),
	}
}

// Handle processes share messages without reply support
func (h *ShareMessageHandler) Handle(ctx context.Context, data []byte, subject string) error {
	return h.HandleWithReply(ctx, data, subject, nil)
}

// HandleWithReply processes one share API request and sends the reply.
// Claiming a share needs no token: the share code is the recipient's
// credential. Everything else requires a validated principal.
func (h *ShareMessageHandler) HandleWithReply(ctx context.Context, data []byte, subject string, reply func([]byte) error) error {
	logger := logging.FromContext(ctx, h.logger)

	var req ShareRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Warn("Malformed share request", "subject", subject, "error", err.Error())
		respondError(ctx, h.logger, reply, "malformed request")
		return fmt.Errorf("malformed share request on %s: %w", subject, err)
	}

	if subject == constants.ShareClaimSubject {
		return h.handleClaim(ctx, &req, reply)
	}

	principal, err := h.authRepo.ValidateToken(ctx, req.Token)
	if err != nil {
		logger.Warn("Share request rejected: invalid token", "subject", subject)
		respondError(ctx, h.logger, reply, "unauthorized")
		return err
	}

	switch subject {
	case constants.ShareCreateSubject:
		return h.handleCreate(ctx, principal, &req, reply)
	case constants.ShareListSubject:
		return h.handleList(ctx, principal, reply)
	case constants.ShareDeleteSubject:
		return h.handleDelete(ctx, principal, &req, reply)
	default:
		logger.Warn("Unexpected subject", "subject", subject)
		respondError(ctx, h.logger, reply, "unknown subject")
		return fmt.Errorf("unexpected subject %s", subject)
	}
}

func (h *ShareMessageHandler) handleCreate(ctx context.Context, principal *contracts.Principal, req *ShareRequest, reply func([]byte) error) error {
	if req.Create == nil {
		respondError(ctx, h.logger, reply, "create payload is required")
		return errors.New("create payload is required")
	}

	resp, err := h.shareService.CreateShare(ctx, principal, req.Create)
	if err != nil {
		respondError(ctx, h.logger, reply, err.Error())
		return err
	}

	respondOK(ctx, h.logger, reply, resp)
	return nil
}

func (h *ShareMessageHandler) handleClaim(ctx context.Context, req *ShareRequest, reply func([]byte) error) error {
	record, err := h.shareService.ClaimShare(ctx, req.ShareCode)
	if err != nil {
		if errors.Is(err, contracts.ErrShareNotFound) {
			respondError(ctx, h.logger, reply, constants.ErrShareNotFound)
		} else {
			respondError(ctx, h.logger, reply, constants.ErrClaimShare)
		}
		return err
	}

	respondOK(ctx, h.logger, reply, record)
	return nil
}

func (h *ShareMessageHandler) handleList(ctx context.Context, principal *contracts.Principal, reply func([]byte) error) error {
	records, err := h.shareService.ListShares(ctx, principal)
	if err != nil {
		respondError(ctx, h.logger, reply, constants.ErrListShares)
		return err
	}

	respondOK(ctx, h.logger, reply, records)
	return nil
}

func (h *ShareMessageHandler) handleDelete(ctx context.Context, principal *contracts.Principal, req *ShareRequest, reply func([]byte) error) error {
	if req.ShareID == "" {
		respondError(ctx, h.logger, reply, "shareId is required")
		return errors.New("shareId is required")
	}

	if err := h.shareService.DeleteShare(ctx, principal, req.ShareID); err != nil {
		if errors.Is(err, contracts.ErrShareNotFound) {
			respondError(ctx, h.logger, reply, constants.ErrShareNotFound)
		} else {
			respondError(ctx, h.logger, reply, constants.ErrDeleteShare)
		}
		return err
	}

	respondOK(ctx, h.logger, reply, map[string]bool{"deleted": true})
	return nil
}
