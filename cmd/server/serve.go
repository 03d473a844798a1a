package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v3"

	"github.com/venuevibe/vibecheck/internal/chat"
	"github.com/venuevibe/vibecheck/internal/config"
	"github.com/venuevibe/vibecheck/internal/handler"
	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/middleware"
	"github.com/venuevibe/vibecheck/internal/queue"
	"github.com/venuevibe/vibecheck/internal/router"
)

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "apply the schema before serving",
		},
	}
}

var serveCmd = &cli.Command{
	Name:   "serve",
	Usage:  "Run the HTTP API (default command)",
	Flags:  serveFlags(),
	Action: serveAction,
}

func serveAction(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, c.Bool("migrate"))
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.SyncAuditConsumer && a.cfg.RabbitURL != "" {
		go func() {
			_ = queue.StartSyncAuditConsumer(ctx, a.cfg.RabbitURL, a.cfg.SyncAuditLog, logging.New("sync-audit"))
		}()
	}

	e := newServer(a)
	addr := ":" + a.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logging.Infof("listening on %s (env=%s)", addr, a.cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logging.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newServer(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	access := logging.New("http")
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			ev := access.Zerolog().Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = access.Zerolog().Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))
	e.Use(echomw.Recover())

	rdb := config.NewRedisClient()
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logging.New("ratelimit"))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logging.New("cache"))

	router.RegisterRoutes(e, &handler.ReadyHandler{DB: a.db}, a.metrics.Handler())
	router.RegisterChat(e, chat.NewHub(logging.New("chat")).Handler())

	api := router.API{
		Venues:  &handler.VenueHandler{Venues: a.venues, Log: logging.New("venues")},
		Events:  &handler.EventHandler{Events: a.events, Log: logging.New("events")},
		Surveys: &handler.SurveyHandler{Surveys: a.surveys, Log: logging.New("surveys")},
		Auth:    handler.NewAuthHandler(a.cfg),
	}
	if a.cfg.AdminEnabled() {
		api.Admin = &handler.AdminHandler{Syncer: a.syncer, Watermarks: a.watermarkRepo, Log: logging.New("admin")}
	}
	router.RegisterAPI(e, api, a.cfg.JWTSecret, limit, cache)
	return e
}
