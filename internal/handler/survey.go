package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/model"
	"github.com/venuevibe/vibecheck/internal/repository"
	"github.com/venuevibe/vibecheck/internal/service"
)

// SurveyStore is the survey service surface used by the handlers.
type SurveyStore interface {
	Aggregate(ctx context.Context, venueID string) (model.SurveyAggregate, error)
	Submit(ctx context.Context, in service.SurveyInput) (repository.InsertResult, error)
}

// SurveyHandler serves /api/surveys. Errors are plain text, as the web
// client expects.
type SurveyHandler struct {
	Surveys SurveyStore
	Log     *logging.Logger
}

const maxSurveyBody = 8 << 10

// GetSurveys handles GET /api/surveys?venueId=.
func (h *SurveyHandler) GetSurveys(c echo.Context) error {
	venueID := strings.TrimSpace(c.QueryParam("venueId"))
	if venueID == "" {
		return c.String(http.StatusBadRequest, "Missing venueId parameter")
	}
	agg, err := h.Surveys.Aggregate(c.Request().Context(), venueID)
	if err != nil {
		logOr(h.Log).Errorf("aggregate surveys for %s: %v", venueID, err)
		return c.String(http.StatusInternalServerError, "Error fetching surveys")
	}
	return c.JSON(http.StatusOK, agg)
}

// PostSurvey handles POST /api/surveys. The five metrics must be JSON
// numbers holding integers in [0, 100]; the reply is the insert result.
func (h *SurveyHandler) PostSurvey(c echo.Context) error {
	var in service.SurveyInput
	dec := json.NewDecoder(http.MaxBytesReader(c.Response(), c.Request().Body, maxSurveyBody))
	if err := dec.Decode(&in); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}
	res, err := h.Surveys.Submit(c.Request().Context(), in)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, res)
	case errors.Is(err, service.ErrInvalidSurvey):
		return c.String(http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, repository.ErrVenueNotFound):
		return c.String(http.StatusBadRequest, "Unknown venueId")
	default:
		logOr(h.Log).Errorf("insert survey: %v", err)
		return c.String(http.StatusInternalServerError, "Error saving survey")
	}
}
