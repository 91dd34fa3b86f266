// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package cleanup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the expired-share cleanup.
var (
	cleanupRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "share_cleanup_runs_total",
		Help: "Total cleanup runs by outcome.",
	}, []string{"outcome"})

	cleanupProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "share_cleanup_processed_total",
		Help: "Total expired shares cleaned up.",
	})

	cleanupRecordFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "share_cleanup_record_failures_total",
		Help: "Total per-record cleanup failures (skipped and retried next run).",
	})

	cleanupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "share_cleanup_duration_seconds",
		Help:    "Duration of cleanup runs.",
		Buckets: prometheus.DefBuckets,
	})
)
