// Package http provides the HTTP server implementation for the orchestrator.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/hub"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/service"
	v1 "github.com/vijaymuruvalugit/HiringAgentEM/internal/transport/http/v1"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/transport/ws"
)

// New creates and configures the HTTP server: the batch API, the progress
// WebSocket and the Prometheus scrape endpoint.
func New(svc *service.Service, h *hub.Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc)
	v1Handler.RegisterRoutes(e)

	if h != nil {
		wsServer := ws.NewServer(h)
		e.GET("/ws", wsServer.HandleWebSocket)
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
