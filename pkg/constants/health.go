// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Health check statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Health components (for detailed health reporting)
const (
	ComponentOpenSearch = "opensearch"
	ComponentNATS       = "nats"
	ComponentBlobStore  = "blobstore"
	ComponentAuth       = "auth"
	ComponentCleanup    = "cleanup"
	ComponentService    = "service"
)

// Health endpoints
const (
	HealthPath    = "/health"
	ReadinessPath = "/readyz"
	LivenessPath  = "/livez"
	MetricsPath   = "/metrics"
)

// Health timeouts and caching
const (
	HealthCheckTimeout = 5 * time.Second
	CacheDuration      = 5 * time.Second
)
