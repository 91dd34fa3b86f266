// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package services contains the domain services of the content share system.
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/christopherhouse/web-content-share/internal/domain/contracts"
	"github.com/christopherhouse/web-content-share/pkg/constants"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// CreateShareRequest carries the inputs for creating a share.
type CreateShareRequest struct {
	FileName        string `json:"fileName"`
	ContentType     string `json:"contentType"`
	RecipientEmail  string `json:"recipientEmail"`
	ExpirationHours int    `json:"expirationHours"`
	Content         []byte `json:"content"`
}

// CreateShareResponse is returned to the sharing user. ShareCode is the plain
// code to hand to the recipient; it is never persisted.
type CreateShareResponse struct {
	ShareID   string    `json:"shareId"`
	ShareCode string    `json:"shareCode"`
	FileName  string    `json:"fileName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ShareService implements the share lifecycle: create, claim, list, delete.
type ShareService struct {
	shares contracts.ShareRepository
	blobs  contracts.BlobRepository
	codes  contracts.ShareCodeCipher

	defaultExpiration time.Duration
	maxExpiration     time.Duration
	logger            *slog.Logger
}

// NewShareService creates a new share service
func NewShareService(
	shares contracts.ShareRepository,
	blobs contracts.BlobRepository,
	codes contracts.ShareCodeCipher,
	defaultExpirationHours, maxExpirationHours int,
	logger *slog.Logger,
) *ShareService {
	return &ShareService{
		shares:            shares,
		blobs:             blobs,
		codes:             codes,
		defaultExpiration: time.Duration(defaultExpirationHours) * time.Hour,
		maxExpiration:     time.Duration(maxExpirationHours) * time.Hour,
		logger:            logging.WithComponent(logger, "share_service"),
	}
}

// CreateShare uploads the content and stores a new share record. The blob
// goes in first so a metadata write failure never leaves a record pointing at
// missing bytes.
func (s *ShareService) CreateShare(ctx context.Context, principal *contracts.Principal, req *CreateShareRequest) (*CreateShareResponse, error) {
	logger := logging.FromContext(ctx, s.logger)

	if err := s.validateCreate(req); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrCreateShare, err)
	}

	shareID := uuid.New().String()
	shareCode, err := s.codes.GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrCreateShare, err)
	}
	encryptedCode, err := s.codes.Encrypt(ctx, shareCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrCreateShare, err)
	}

	blobPath := fmt.Sprintf("%s/%s/%s", principal.Subject, shareID, req.FileName)
	size, err := s.blobs.Put(ctx, blobPath, bytes.NewReader(req.Content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrCreateShare, err)
	}

	now := time.Now().UTC()
	record := &contracts.ShareRecord{
		ID:                 shareID,
		OwnerID:            principal.Subject,
		FileName:           req.FileName,
		BlobPath:           blobPath,
		ContentType:        req.ContentType,
		FileSizeBytes:      size,
		RecipientEmail:     req.RecipientEmail,
		EncryptedShareCode: encryptedCode,
		CreatedAt:          now,
		UpdatedAt:          now,
		ExpiresAt:          now.Add(s.expiration(req.ExpirationHours)),
	}

	if err := s.shares.Create(ctx, record); err != nil {
		// Keep the store free of unreferenced bytes.
		if delErr := s.blobs.DeleteIfExists(ctx, blobPath); delErr != nil {
			logger.Warn("Failed to remove blob after metadata write failure",
				"blob_path", blobPath, "error", delErr.Error())
		}
		return nil, fmt.Errorf("%s: %w", constants.ErrCreateShare, err)
	}

	logger.Info("Share created",
		"share_id", shareID,
		"owner_id", principal.Subject,
		"file_size_bytes", size,
		"expires_at", record.ExpiresAt)

	return &CreateShareResponse{
		ShareID:   shareID,
		ShareCode: shareCode,
		FileName:  req.FileName,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// ClaimShare resolves a plain share code to its live share record. Lookup
// works by re-encrypting the presented code and matching the stored value, so
// the plain code never needs to be persisted or indexed.
func (s *ShareService) ClaimShare(ctx context.Context, shareCode string) (*contracts.ShareRecord, error) {
	logger := logging.FromContext(ctx, s.logger)

	if shareCode == "" {
		return nil, fmt.Errorf("%s: %w", constants.ErrClaimShare, contracts.ErrShareNotFound)
	}

	encryptedCode, err := s.codes.Encrypt(ctx, shareCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrClaimShare, err)
	}

	record, err := s.shares.FindByEncryptedCode(ctx, encryptedCode, time.Now().UTC())
	if err != nil {
		if errors.Is(err, contracts.ErrShareNotFound) {
			logger.Info("Share claim failed: no live share for presented code")
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", constants.ErrClaimShare, err)
	}

	logger.Info("Share claimed", "share_id", record.ID)
	return record, nil
}

// ListShares returns the caller's live shares, newest first
func (s *ShareService) ListShares(ctx context.Context, principal *contracts.Principal) ([]contracts.ShareRecord, error) {
	records, err := s.shares.ListByOwner(ctx, principal.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrListShares, err)
	}
	return records, nil
}

// DeleteShare tombstones the caller's share and removes its blob. The record
// goes through the same tombstone path as the cleanup engine; the blob delete
// afterward is best-effort.
func (s *ShareService) DeleteShare(ctx context.Context, principal *contracts.Principal, shareID string) error {
	logger := logging.FromContext(ctx, s.logger)

	record, err := s.shares.Get(ctx, shareID, principal.Subject)
	if err != nil {
		if errors.Is(err, contracts.ErrShareNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", constants.ErrDeleteShare, err)
	}

	record.MarkDeleted(time.Now().UTC())
	if err := s.shares.Replace(ctx, record); err != nil {
		return fmt.Errorf("%s: %w", constants.ErrDeleteShare, err)
	}

	if err := s.blobs.DeleteIfExists(ctx, record.BlobPath); err != nil {
		logger.Warn("Blob delete failed after soft delete, blob orphaned",
			"share_id", shareID, "blob_path", record.BlobPath, "error", err.Error())
	}

	logger.Info("Share deleted", "share_id", shareID, "owner_id", principal.Subject)
	return nil
}

func (s *ShareService) validateCreate(req *CreateShareRequest) error {
	if req.FileName == "" {
		return errors.New("fileName is required")
	}
	if len(req.Content) == 0 {
		return errors.New("content is required")
	}
	if req.RecipientEmail == "" {
		return errors.New("recipientEmail is required")
	}
	if req.ExpirationHours < 0 {
		return errors.New("expirationHours must not be negative")
	}
	return nil
}

// expiration clamps the requested lifetime into the configured window
func (s *ShareService) expiration(hours int) time.Duration {
	d := time.Duration(hours) * time.Hour
	if d <= 0 {
		d = s.defaultExpiration
	}
	if s.maxExpiration > 0 && d > s.maxExpiration {
		d = s.maxExpiration
	}
	return d
}
