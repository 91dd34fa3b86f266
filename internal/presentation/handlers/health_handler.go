// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

// Package handlers provides the HTTP and NATS-facing handlers of the content
// share service.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/christopherhouse/web-content-share/internal/domain/services"
	"github.com/christopherhouse/web-content-share/pkg/constants"
)

// HealthHandler handles Kubernetes health check requests
type HealthHandler struct {
	healthService  *services.HealthService
	simpleResponse bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(healthService *services.HealthService, simpleResponse bool) *HealthHandler {
	return &HealthHandler{
		healthService:  healthService,
		simpleResponse: simpleResponse,
	}
}

// HandleLiveness handles Kubernetes liveness probe requests
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	status := h.healthService.CheckLiveness(r.Context())
	h.writeHealthResponse(w, status, http.StatusOK) // Liveness always returns 200
}

// HandleReadiness handles Kubernetes readiness probe requests
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	status := h.healthService.CheckReadiness(r.Context())

	var statusCode int
	switch status.Status {
	case constants.StatusHealthy:
		statusCode = http.StatusOK
	case constants.StatusDegraded, constants.StatusUnhealthy:
		statusCode = http.StatusServiceUnavailable
	default:
		statusCode = http.StatusInternalServerError
	}

	h.writeHealthResponse(w, status, statusCode)
}

// HandleHealthCheck handles general health check requests
func (h *HealthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.healthService.CheckHealth(r.Context())

	var statusCode int
	switch status.Status {
	case constants.StatusHealthy, constants.StatusDegraded:
		statusCode = http.StatusOK
	case constants.StatusUnhealthy:
		statusCode = http.StatusServiceUnavailable
	default:
		statusCode = http.StatusInternalServerError
	}

	h.writeHealthResponse(w, status, statusCode)
}

// writeHealthResponse writes the health status as JSON or simple response
func (h *HealthHandler) writeHealthResponse(w http.ResponseWriter, status *services.HealthStatus, statusCode int) {
	if h.simpleResponse {
		// Simple response for K8s compatibility
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(statusCode)
		if statusCode == http.StatusOK {
			fmt.Fprintf(w, "OK\n")
		} else {
			fmt.Fprintf(w, "UNHEALTHY\n")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// RegisterRoutes registers the health check and metrics routes
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(constants.LivenessPath, h.HandleLiveness)
	mux.HandleFunc(constants.ReadinessPath, h.HandleReadiness)
	mux.HandleFunc(constants.HealthPath, h.HandleHealthCheck)
	mux.Handle(constants.MetricsPath, promhttp.Handler())
}
