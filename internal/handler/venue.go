// Package handler exposes the HTTP handlers of the vibe check API. Handlers
// depend on small interfaces over the service layer so they can be tested
// with stubs.
package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/model"
)

// VenueLister lists venues with their trailing 24h survey counts.
type VenueLister interface {
	List(ctx context.Context) ([]model.VenueWithCount, error)
}

type VenueHandler struct {
	Venues VenueLister
	Log    *logging.Logger
}

// ListVenues handles GET /api/venues. The body is a bare JSON array of
// {id, name, surveyCount} sorted by surveyCount descending.
func (h *VenueHandler) ListVenues(c echo.Context) error {
	venues, err := h.Venues.List(c.Request().Context())
	if err != nil {
		logOr(h.Log).Errorf("list venues: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, venues)
}

func logOr(l *logging.Logger) *logging.Logger {
	if l == nil {
		return logging.Nop()
	}
	return l
}
