package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/model"
)

// EventLister returns a venue's upcoming events, syncing first when the
// dataset is stale or forceSync is set.
type EventLister interface {
	ListForVenue(ctx context.Context, venueID string, forceSync bool) ([]model.Event, error)
}

type EventHandler struct {
	Events EventLister
	Log    *logging.Logger
}

// ListEvents handles GET /api/events?venueId=&forceSync=true. The venueId
// check happens before anything touches storage.
func (h *EventHandler) ListEvents(c echo.Context) error {
	venueID := strings.TrimSpace(c.QueryParam("venueId"))
	if venueID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "venueId is required"})
	}
	force := c.QueryParam("forceSync") == "true"

	events, err := h.Events.ListForVenue(c.Request().Context(), venueID, force)
	if err != nil {
		logOr(h.Log).Errorf("list events for %s: %v", venueID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": events})
}
