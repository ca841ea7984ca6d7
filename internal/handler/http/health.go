package http

import (
	"Linkfolio-Backend/internal/analytics"
	"Linkfolio-Backend/internal/repository"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	storage   repository.Storage
	processor *analytics.Processor
	log       *zap.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(storage repository.Storage, processor *analytics.Processor, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage:   storage,
		processor: processor,
		log:       log,
	}
}

// HealthResponse is the health probe payload.
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	DatabaseStatus string    `json:"database_status"`
	Uptime         string    `json:"uptime,omitempty"`
}

var startTime = time.Now()

// Health reports service and database health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// A not-found answer still proves the database responds.
	dbStatus := "healthy"
	_, err := h.storage.GetProfileByUsername(ctx, "health-check-non-existent")
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	status := "healthy"
	statusCode := http.StatusOK
	if dbStatus == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(startTime).String(),
	}, statusCode)
}

// Ready reports readiness and click queue depth.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	queueLength, queueCapacity := h.processor.QueueStats()

	writeJSON(w, map[string]interface{}{
		"status":               "ready",
		"timestamp":            time.Now(),
		"click_queue_length":   queueLength,
		"click_queue_capacity": queueCapacity,
	}, http.StatusOK)
}
