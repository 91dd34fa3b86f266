// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/christopherhouse/web-content-share/internal/domain/services"
	"github.com/christopherhouse/web-content-share/pkg/constants"
)

func newHealthHandler(healthy bool, simple bool) *HealthHandler {
	shares := &MockShareRepository{}
	messaging := &MockMessagingRepository{}
	blobs := &MockBlobRepository{}
	auth := &MockAuthRepository{}

	var result error
	if !healthy {
		result = errors.New("dependency down")
	}
	shares.On("HealthCheck", mock.Anything).Return(result)
	messaging.On("HealthCheck", mock.Anything).Return(result)
	blobs.On("HealthCheck", mock.Anything).Return(result)
	auth.On("HealthCheck", mock.Anything).Return(result)

	healthService := services.NewHealthService(shares, messaging, blobs, auth, time.Second, 0)
	return NewHealthHandler(healthService, simple)
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler := newHealthHandler(false, false)

	rec := httptest.NewRecorder()
	handler.HandleLiveness(rec, httptest.NewRequest(http.MethodGet, constants.LivenessPath, nil))

	// Liveness ignores dependency state.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), constants.StatusHealthy)
}

func TestHealthHandler_Readiness(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		handler := newHealthHandler(true, false)

		rec := httptest.NewRecorder()
		handler.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, constants.ReadinessPath, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})

	t.Run("dependencies down", func(t *testing.T) {
		handler := newHealthHandler(false, false)

		rec := httptest.NewRecorder()
		handler.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, constants.ReadinessPath, nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHealthHandler_SimpleResponse(t *testing.T) {
	handler := newHealthHandler(true, true)

	rec := httptest.NewRecorder()
	handler.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, constants.ReadinessPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestHealthHandler_RegisterRoutes(t *testing.T) {
	handler := newHealthHandler(true, false)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	for _, path := range []string{constants.LivenessPath, constants.ReadinessPath, constants.HealthPath, constants.MetricsPath} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}
