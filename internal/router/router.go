// Package router registers the HTTP routes on an Echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/venuevibe/vibecheck/internal/handler"
)

// RegisterRoutes registers the unauthenticated infrastructure routes:
// liveness, readiness and the metrics scrape endpoint.
func RegisterRoutes(e *echo.Echo, ready *handler.ReadyHandler, metrics http.Handler) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready.Ready)
	}
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// RegisterChat mounts the WebSocket chat room at /chatroom.
func RegisterChat(e *echo.Echo, ws http.Handler) {
	e.GET("/chatroom", echo.WrapHandler(ws))
}
