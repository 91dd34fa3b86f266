// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Service identity
const (
	ServiceName = "web-content-share"
	Component   = "content-share"
)

// Performance limits and timeouts
const (
	ProcessingTimeout = 30 * time.Second // Max time to process a message
	ShutdownTimeout   = 30 * time.Second // Max time for graceful shutdown
)

// Default configuration values
const (
	DefaultSharesIndex       = "shares"
	DefaultCleanupStateIndex = "cleanup-state"
	DefaultShareBucket       = "share-files"
	DefaultPort              = 8080
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
	DefaultBindAddress       = "*"
	DefaultExpirationHours   = 24
	DefaultCleanupInterval   = 5 * time.Minute
	DefaultCleanupBatchSize  = 100
)

// Share lifecycle
const (
	// ShareCodeLength is the length of the generated recipient share code.
	ShareCodeLength = 12

	// RetentionTTLSeconds is how long a tombstoned share record is kept
	// before the store's own expiry removes it (180 days).
	RetentionTTLSeconds = 180 * 24 * 60 * 60
)

// CheckpointDocumentID is the well-known identifier of the single cleanup
// checkpoint document. It lives in a dedicated index so fetching it is always
// a point read, never a scan.
const CheckpointDocumentID = "cleanup-job-state"
