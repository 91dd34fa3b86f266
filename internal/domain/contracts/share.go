// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package contracts defines the interfaces and domain types for the content share service.
package contracts

import (
	"context"
	"time"

	"github.com/christopherhouse/web-content-share/pkg/constants"
)

// ShareRecord is the metadata document for one shared file.
//
// A record is created together with its blob upload and is never physically
// removed by application code: deletion tombstones the record (IsDeleted plus
// a long retention TTL) and leaves the final purge to the store's own expiry.
type ShareRecord struct {
	// ID is an opaque unique identifier generated at creation.
	ID string `json:"id"`

	// OwnerID scopes the record to the sharing user; all owner-facing
	// queries filter on it.
	OwnerID string `json:"ownerId"`

	FileName      string `json:"fileName"`
	BlobPath      string `json:"blobPath"`
	ContentType   string `json:"contentType"`
	FileSizeBytes int64  `json:"fileSizeBytes"`

	// RecipientEmail is the address the share code was sent to.
	RecipientEmail string `json:"recipientEmail"`

	// EncryptedShareCode is the recipient's claim code; the plain code is
	// never persisted.
	EncryptedShareCode string `json:"encryptedShareCode"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`

	// IsDeleted marks the record as tombstoned. A tombstoned record is
	// immutable except for the store's eventual hard expiry of the row.
	IsDeleted bool `json:"isDeleted"`

	// RetentionTTLSeconds is applied only after soft delete so the store
	// can purge old tombstones after the retention window. Zero means no
	// TTL (active record).
	RetentionTTLSeconds int64 `json:"retentionTtlSeconds,omitempty"`
}

// IsExpired reports whether the share's expiry is strictly in the past.
func (r *ShareRecord) IsExpired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// MarkDeleted tombstones the record: sets the soft-delete flag, refreshes
// UpdatedAt, and applies the long retention TTL. The cleanup engine and the
// interactive delete path both go through this so the tombstone contract
// cannot diverge. Calling it on an already-deleted record is a no-op.
func (r *ShareRecord) MarkDeleted(now time.Time) {
	if r.IsDeleted {
		return
	}
	r.IsDeleted = true
	r.UpdatedAt = now
	r.RetentionTTLSeconds = constants.RetentionTTLSeconds
}

// PageCursor is an opaque paging cursor for expiry scans. It carries the sort
// values of the last record of the previous page.
type PageCursor struct {
	SortValues []any
}

// ShareRepository defines the data access contract for share records.
type ShareRepository interface {
	// Create stores a new share record.
	Create(ctx context.Context, record *ShareRecord) error

	// Replace overwrites an existing record by its ID (replace, not insert).
	Replace(ctx context.Context, record *ShareRecord) error

	// Get fetches one record by ID within an owner scope. Returns
	// ErrShareNotFound if absent.
	Get(ctx context.Context, id, ownerID string) (*ShareRecord, error)

	// FindByEncryptedCode returns the non-deleted, non-expired record whose
	// encrypted share code matches, or ErrShareNotFound.
	FindByEncryptedCode(ctx context.Context, encryptedCode string, now time.Time) (*ShareRecord, error)

	// ListByOwner returns the owner's non-deleted records, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]ShareRecord, error)

	// FindExpired returns one page of records needing cleanup: expired
	// strictly before now, not yet deleted, and either changed after mark or
	// expiring after mark. Results are ordered by ascending change order
	// (updatedAt, then id); the returned cursor fetches the next page and is
	// nil when the scan is complete.
	FindExpired(ctx context.Context, mark, now time.Time, after *PageCursor, size int) ([]ShareRecord, *PageCursor, error)

	// HealthCheck checks connectivity to the underlying store.
	HealthCheck(ctx context.Context) error
}
