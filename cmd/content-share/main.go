// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package main provides the entry point for the web content share service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/christopherhouse/web-content-share/internal/container"
	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	flags := parseCLIFlags()

	logger := logging.NewLogger(flags.Debug)

	// Handle early exits (help, config-check)
	handleEarlyExits(flags, logger)

	logger.Info("Configuration loaded",
		"port", flags.Port,
		"debug", flags.Debug,
		"bind", flags.Bind,
		"no_cleanup", flags.NoCleanup,
		"simple_health", flags.SimpleHealth)

	logger.Info("Web Content Share Service startup initiated",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit)

	c, err := container.NewContainer(logger, flags)
	if err != nil {
		logger.Error("Failed to initialize container", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Performing initial health check...")
	if err := c.HealthCheck(ctx); err != nil {
		logger.Warn("Initial health check failed", "error", err.Error())
		logger.Warn("Service will start in degraded mode - some dependencies may be unavailable")
	} else {
		logger.Info("Initial health check passed")
	}

	if err := c.StartServices(ctx); err != nil {
		logger.Error("Failed to start background services", "error", err.Error())
		if closeErr := c.Close(); closeErr != nil {
			logger.Error("Error closing container", "error", closeErr.Error())
		}
		os.Exit(1)
	}

	server := createHTTPServer(c, flags.Bind)
	startHTTPServer(server, c, flags.Bind, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Web Content Share Service started successfully",
		"queue_group", c.Config.NATS.Queue,
		"shares_index", c.Config.OpenSearch.SharesIndex,
		"cleanup_enabled", c.Config.Cleanup.Enabled)
	logger.Info("Service is ready to process messages...")

	receivedSignal := <-sigChan

	logger.Info("Shutdown signal received", "signal", receivedSignal.String())
	logger.Info("Initiating graceful shutdown sequence...")

	// Stop taking new work first, then let in-flight NATS handlers drain,
	// then stop the HTTP server last so probes stay accurate during drain.
	cancel()

	if err := c.MessagingRepository.DrainWithTimeout(); err != nil {
		logger.Warn("NATS drain did not complete cleanly", "error", err.Error())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), c.Config.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health check server shutdown error", "error", err.Error())
	} else {
		logger.Info("Health check server shutdown completed")
	}

	if err := c.Close(); err != nil {
		logger.Error("Error closing container", "error", err.Error())
	}

	logger.Info("Graceful shutdown completed")
}
