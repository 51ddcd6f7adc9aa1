// Package server wires the trip server together: PostgreSQL, S3 photo
// storage, the trip service and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/api"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/config"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/notify"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/repositories/repomanager"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/services"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/storage"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	tripService *services.TripService
	server      *api.Server
}

// openDB is a seam for sql.Open with the pgx stdlib driver.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	photos, err := storage.NewS3Store(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("s3 init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager(), photos)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager, photos storage.PhotoStore) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	ts := services.NewTripService(db, rm, photos, c, logger)

	if logging.ParseLevel(c.LogLevel) > logging.ParseLevel("debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(c, ts, notify.New(c, logger), logger.With("module", "http"))

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		tripService: ts,
		server:      api.NewServer(c, router, logger),
	}, nil
}

// Run serves until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...", "addr", app.config.Addr, "require_auth", app.config.RequireAuth)
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		return err
	}
	app.logger.Info(ctx, "Stopped")
	return nil
}

func (app *App) Close() error {
	return app.db.Close()
}
