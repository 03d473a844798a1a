package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/venuevibe/vibecheck/internal/config"
	"github.com/venuevibe/vibecheck/internal/database"
	"github.com/venuevibe/vibecheck/internal/logging"
	"github.com/venuevibe/vibecheck/internal/metrics"
	"github.com/venuevibe/vibecheck/internal/repository"
	"github.com/venuevibe/vibecheck/internal/scraper"
	"github.com/venuevibe/vibecheck/internal/service"
)

// app holds the constructed dependency graph shared by the commands.
type app struct {
	cfg     config.Config
	db      *sql.DB
	metrics *metrics.Metrics

	venueRepo     *repository.VenueRepo
	eventRepo     *repository.EventRepo
	surveyRepo    *repository.SurveyRepo
	watermarkRepo *repository.WatermarkRepo

	publisher service.Publisher
	syncer    *service.EventSyncService
	gate      *service.SyncGate
	venues    *service.VenueService
	events    *service.EventService
	surveys   *service.SurveyService
}

func newApp(ctx context.Context, migrate bool) (*app, error) {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	loc, err := time.LoadLocation(cfg.EventsTimezone)
	if err != nil {
		return nil, fmt.Errorf("events timezone %q: %w", cfg.EventsTimezone, err)
	}
	scfg, err := config.LoadScraperConfig(cfg.ScraperConfigPath)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		logging.Infof("schema migrated")
	}

	a := &app{
		cfg:           cfg,
		db:            db,
		metrics:       metrics.New(),
		venueRepo:     repository.NewVenueRepo(db),
		eventRepo:     repository.NewEventRepo(db),
		surveyRepo:    repository.NewSurveyRepo(db),
		watermarkRepo: repository.NewWatermarkRepo(db),
	}
	if cfg.RabbitURL != "" {
		a.publisher = service.NewQueuePublisher(cfg.RabbitURL, logging.New("rabbitmq"))
	}

	fetcher := scraper.NewFetcher(scfg, logging.New("scraper"))
	a.syncer = service.NewEventSyncService(fetcher, a.venueRepo, a.eventRepo, a.watermarkRepo, service.EventSyncOptions{
		Location:  loc,
		MaxVenues: scfg.MaxVenues,
		Publisher: a.publisher,
		Metrics:   a.metrics,
		Logger:    logging.New("event-sync"),
	})
	a.gate = service.NewSyncGate(cfg.SyncStaleAfter, a.watermarkRepo, a.syncer, a.metrics, logging.New("sync-gate"))
	a.venues = service.NewVenueService(a.venueRepo)
	a.events = service.NewEventService(a.eventRepo, a.gate, loc, cfg.EventsDayStartHr, logging.New("events"))
	a.surveys = service.NewSurveyService(a.surveyRepo, a.publisher, a.metrics, logging.New("surveys"))
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
