// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/christopherhouse/web-content-share/internal/container"
	"github.com/christopherhouse/web-content-share/pkg/constants"
)

// createHTTPServer creates and configures the HTTP server with health check
// and metrics routes
func createHTTPServer(c *container.Container, bind string) *http.Server {
	mux := http.NewServeMux()
	c.HealthHandler.RegisterRoutes(mux)

	// Wrap the handler with OpenTelemetry instrumentation
	var handler http.Handler = mux
	handler = otelhttp.NewHandler(handler, constants.ServiceName)

	var addr string
	if bind == "*" {
		addr = fmt.Sprintf(":%d", c.Config.Server.Port)
	} else {
		addr = fmt.Sprintf("%s:%d", bind, c.Config.Server.Port)
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       c.Config.Server.ReadTimeout,
		WriteTimeout:      c.Config.Server.WriteTimeout,
		ReadHeaderTimeout: 3 * time.Second, // Security: prevent slowloris attacks
	}
}

// startHTTPServer starts the HTTP server in a goroutine with logging
func startHTTPServer(server *http.Server, c *container.Container, bind string, logger *slog.Logger) {
	go func() {
		logger.Info("Starting health check HTTP server",
			"port", c.Config.Server.Port,
			"bind", bind,
			"addr", server.Addr)
		logger.Info("Health endpoints available",
			"health", constants.HealthPath,
			"livez", constants.LivenessPath,
			"readyz", constants.ReadinessPath,
			"metrics", constants.MetricsPath)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health check server error", "error", err.Error())
			os.Exit(1)
		}
	}()
}
