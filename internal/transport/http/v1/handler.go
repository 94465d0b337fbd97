// Package v1 provides the public HTTP handlers for the orchestrator.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers external routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Batch API
	e.POST("/v1/batches", h.CreateBatch)
	e.GET("/v1/batches", h.ListBatches)
	e.GET("/v1/batches/:batch_id", h.GetBatch)
	e.GET("/v1/batches/:batch_id/events", h.GetBatchEvents)

	// Agent registry API
	e.GET("/v1/agents", h.ListAgents)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
