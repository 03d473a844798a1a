package router

import (
	"github.com/labstack/echo/v4"

	"github.com/venuevibe/vibecheck/internal/handler"
	"github.com/venuevibe/vibecheck/internal/middleware"
	"github.com/venuevibe/vibecheck/internal/utils"
)

// API bundles the handlers behind /api.
type API struct {
	Venues  *handler.VenueHandler
	Events  *handler.EventHandler
	Surveys *handler.SurveyHandler
	Admin   *handler.AdminHandler
	Auth    *handler.AuthHandler
}

// RegisterAPI mounts the public and admin API under /api. limit applies to
// every /api route; cache wraps only the venue directory, because events
// and surveys must observe the sync gate and fresh submissions.
func RegisterAPI(e *echo.Echo, api API, jwtSecret string, limit, cache echo.MiddlewareFunc) {
	g := e.Group("/api")
	if limit != nil {
		g.Use(limit)
	}

	venue := []echo.MiddlewareFunc{}
	if cache != nil {
		venue = append(venue, cache)
	}
	g.GET("/venues", api.Venues.ListVenues, venue...)
	g.GET("/events", api.Events.ListEvents)
	g.GET("/surveys", api.Surveys.GetSurveys)
	g.POST("/surveys", api.Surveys.PostSurvey)

	if api.Auth != nil {
		g.POST("/auth/login", api.Auth.Login)
	}
	// Without a secret no token can verify, so the admin group is not mounted.
	if api.Admin == nil || jwtSecret == "" {
		return
	}
	admin := g.Group("/admin", middleware.JWTAuth(jwtSecret), middleware.RequireRole(utils.RoleAdmin))
	admin.POST("/sync", api.Admin.Sync)
	admin.GET("/sync/latest", api.Admin.LatestSync)
}
