// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package constants

// Error messages (centralized from scattered string literals)
const (
	ErrHealthCheck     = "health check failed"
	ErrShutdownTimeout = "shutdown timeout exceeded"

	// Share processing errors
	ErrCreateShare   = "failed to create share"
	ErrClaimShare    = "failed to claim share"
	ErrListShares    = "failed to list shares"
	ErrDeleteShare   = "failed to delete share"
	ErrShareNotFound = "share not found"

	// Cleanup errors
	ErrReadCheckpoint  = "failed to read cleanup checkpoint"
	ErrWriteCheckpoint = "failed to write cleanup checkpoint"
	ErrScanExpired     = "failed to scan expired shares"
	ErrCleanupRecord   = "failed to clean up share record"

	// Storage specific errors
	ErrMarshalQuery     = "failed to marshal query"
	ErrSearchFailed     = "failed to search"
	ErrDecodeResponse   = "failed to decode search response"
	ErrIndexDocument    = "failed to index document"
	ErrDeleteDocument   = "failed to delete document"
	ErrMarshalDocument  = "failed to marshal document"
	ErrGetDocument      = "failed to get document"
	ErrDeleteBlob       = "failed to delete blob"
	ErrPutBlob          = "failed to store blob"
	ErrEncryptShareCode = "failed to encrypt share code"
	ErrDecryptShareCode = "failed to decrypt share code"

	// Auth errors
	ErrInvalidToken        = "invalid token"
	ErrMissingToken        = "missing bearer token"
	ErrSubjectMissing      = "token has no subject"
	ErrJWTValidatorNotInit = "JWT validator not initialized"
)

// BearerPrefix is the lowercase authorization scheme prefix, including the
// trailing space
const BearerPrefix = "bearer "

// Error contexts (for structured error logging)
const (
	ContextValidation = "validation"
	ContextProcessing = "processing"
	ContextStorage    = "storage"
	ContextMessaging  = "messaging"
	ContextCleanup    = "cleanup"
)
