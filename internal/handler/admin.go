package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/model"
	"github.com/venuevibe/vibecheck/internal/repository"
	"github.com/venuevibe/vibecheck/internal/service"
)

// WatermarkReader returns the most recent sync watermark.
type WatermarkReader interface {
	Latest(ctx context.Context) (*model.SyncWatermark, error)
}

// AdminHandler serves the operator endpoints under /api/admin. Routes are
// guarded by JWTAuth and RequireRole("ADMIN").
type AdminHandler struct {
	Syncer     service.Syncer
	Watermarks WatermarkReader
	Log        *logging.Logger
}

// Sync handles POST /api/admin/sync. It always syncs, ignoring the
// watermark, and replies with the result. Upstream failures map to 502.
func (h *AdminHandler) Sync(c echo.Context) error {
	res, err := h.Syncer.Sync(c.Request().Context())
	if err != nil {
		logOr(h.Log).Errorf("admin sync: %v", err)
		if errors.Is(err, service.ErrUpstream) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sync failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// LatestSync handles GET /api/admin/sync/latest.
func (h *AdminHandler) LatestSync(c echo.Context) error {
	wm, err := h.Watermarks.Latest(c.Request().Context())
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, wm)
	case errors.Is(err, repository.ErrWatermarkNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no sync recorded"})
	default:
		logOr(h.Log).Errorf("latest watermark: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
