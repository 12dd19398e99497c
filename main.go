// main.go - Entry point and dependency injection
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/sstent/walktime-go/internal/config"
	"github.com/sstent/walktime-go/internal/database"
	"github.com/sstent/walktime-go/internal/directions"
	"github.com/sstent/walktime-go/internal/estimator"
	"github.com/sstent/walktime-go/internal/export"
	"github.com/sstent/walktime-go/internal/logger"
	"github.com/sstent/walktime-go/internal/profile"
	"github.com/sstent/walktime-go/internal/sync"
	"github.com/sstent/walktime-go/internal/tracking"
	"github.com/sstent/walktime-go/internal/web"
)

const serviceName = "walktime"

type App struct {
	cfg       *config.Config
	log       logger.Logger
	db        *database.SQLiteDB
	cron      *cron.Cron
	server    *http.Server
	estimator *estimator.Estimator
	importer  *sync.ImportService
	shutdown  chan os.Signal
}

func main() {
	cfg, envFound, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	if !logger.ValidateLogLevel(cfg.LogLevel) {
		fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL %q, using INFO\n", cfg.LogLevel)
		cfg.LogLevel = logger.LevelInfo
	}
	log := logger.InitLogger(serviceName, cfg.LogLevel)

	ctx := context.Background()
	if !envFound {
		log.Info(ctx, "no .env file found, using system environment variables")
	}

	app := &App{
		cfg:      cfg,
		log:      log,
		shutdown: make(chan os.Signal, 1),
	}

	// Initialize components
	if err := app.init(ctx); err != nil {
		log.Error(ctx, "failed to initialize app", err)
		os.Exit(1)
	}

	// Start services
	if err := app.start(ctx); err != nil {
		log.Error(ctx, "failed to start app", err)
		app.stop(ctx)
		os.Exit(1)
	}

	// Wait for shutdown signal
	signal.Notify(app.shutdown, os.Interrupt, syscall.SIGTERM)
	<-app.shutdown

	// Graceful shutdown
	app.stop(ctx)
}

func (app *App) init(ctx context.Context) error {
	var err error

	if err := os.MkdirAll(filepath.Dir(app.cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Initialize database
	app.db, err = database.NewSQLiteDB(app.cfg.DBPath)
	if err != nil {
		return err
	}

	// Speed profile, live tracker and route provider
	trackingCfg := tracking.DefaultConfig()
	trackingCfg.DropImplausibleDistance = app.cfg.DropImplausibleDistance

	app.estimator = estimator.New(
		profile.Load(ctx, app.db, app.log),
		tracking.NewTracker(trackingCfg),
		directions.NewClient(app.cfg.DirectionsURL, app.cfg.GeocoderURL, app.cfg.DirectionsTimeout),
		app.log,
	)

	// Trace inbox importer
	app.importer = sync.NewImportService(app.estimator, app.db, app.cfg.ImportDir(), app.log)

	// Setup cron scheduler
	app.cron = cron.New()

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	handler := web.NewHandler(app.estimator, app.importer, app.log)

	app.server = &http.Server{
		Addr:              app.cfg.HTTPAddr,
		Handler:           web.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

func (app *App) start(ctx context.Context) error {
	// Scheduled jobs
	if app.cfg.ImportSchedule != "" {
		if _, err := app.cron.AddFunc(app.cfg.ImportSchedule, app.scanImports); err != nil {
			return fmt.Errorf("invalid IMPORT_SCHEDULE: %w", err)
		}
	}
	if app.cfg.ExportSchedule != "" {
		if _, err := app.cron.AddFunc(app.cfg.ExportSchedule, app.snapshotHistory); err != nil {
			return fmt.Errorf("invalid EXPORT_SCHEDULE: %w", err)
		}
	}
	app.cron.Start()

	// Start web server
	go func() {
		app.log.Info(ctx, "server starting", "addr", app.cfg.HTTPAddr)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.log.Error(ctx, "server error", err)
			app.shutdown <- syscall.SIGTERM
		}
	}()

	return nil
}

func (app *App) scanImports() {
	ctx := logger.WithAction(context.Background(), "scheduled_import")
	app.log.Info(ctx, "starting scheduled import")
	if _, err := app.importer.Scan(ctx); err != nil {
		app.log.Error(ctx, "scheduled import failed", err)
	}
}

func (app *App) snapshotHistory() {
	ctx := logger.WithAction(context.Background(), "scheduled_export")
	if _, err := app.estimator.Snapshot(ctx, app.cfg.ExportDir()); err != nil {
		if errors.Is(err, export.ErrNoData) {
			app.log.Debug(ctx, "no walks to snapshot")
			return
		}
		app.log.Error(ctx, "scheduled export failed", err)
	}
}

func (app *App) stop(ctx context.Context) {
	app.log.Info(ctx, "shutting down")

	// Stop cron and wait for running jobs
	if app.cron != nil {
		<-app.cron.Stop().Done()
	}

	// Stop web server
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if app.server != nil {
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			app.log.Error(ctx, "server shutdown error", err)
		}
	}

	// Close database
	if app.db != nil {
		app.db.Close()
	}

	app.log.Info(ctx, "shutdown complete")
}
