// Package main implements the entry point for the SureUp worker service:
// an HTTP API over an in-process priority task queue, processed by a pool
// of concurrent workers dispatching to AI analysis and generation handlers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sureup/worker-api/internal/config"
	"github.com/sureup/worker-api/internal/platform/gemini"
	"github.com/sureup/worker-api/internal/platform/logger"
	"github.com/sureup/worker-api/internal/platform/postgres"
	"github.com/sureup/worker-api/internal/queue"
	"github.com/sureup/worker-api/internal/schedule"
	"github.com/sureup/worker-api/internal/task"
	"github.com/sureup/worker-api/internal/worker"
	"github.com/sureup/worker-api/internal/workers"
)

// application holds the process-wide dependencies. The queue and registry
// are constructed exactly once here and passed by reference into the HTTP
// layer and the worker pool; there is no hidden global state.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	queue     queue.TaskQueue
	registry  *task.Registry
	pool      *worker.Pool
	scheduler *schedule.Scheduler
	dbPool    *pgxpool.Pool
}

func main() {
	app, err := initializeApp(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(); err != nil {
		app.logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and wires up application components.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"queue_backend", cfg.Queue.Backend,
		"worker_concurrency", cfg.Worker.Concurrency,
		"worker_timeout_seconds", cfg.Worker.TimeoutSeconds)

	app := &application{
		config:   cfg,
		logger:   appLogger,
		queue:    queue.New(cfg.Queue, appLogger),
		registry: task.NewRegistry(),
	}

	if err := app.registerWorkers(ctx); err != nil {
		return nil, err
	}

	app.pool = worker.NewPool(app.queue, app.registry, worker.PoolConfig{
		Concurrency: cfg.Worker.Concurrency,
		TaskTimeout: time.Duration(cfg.Worker.TimeoutSeconds) * time.Second,
	}, appLogger)

	if cfg.Worker.DailyTaskCron != "" {
		scheduler, err := schedule.New(app.queue, cfg.Worker.DailyTaskCron, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create scheduler: %w", err)
		}
		app.scheduler = scheduler
	}

	prometheus.MustRegister(worker.NewQueueStatsCollector(app.queue, appLogger))

	return app, nil
}

// registerWorkers connects the handler dependencies (document store, LLM
// client) and registers all task types. Without a database URL the process
// still serves the queue API, with an empty registry: useful for local
// development of the queue itself, loudly logged.
func (app *application) registerWorkers(ctx context.Context) error {
	if app.config.Database.URL == "" {
		app.logger.Warn("DATABASE_URL is not set, starting with no registered task types")
		return nil
	}

	if err := runMigrations(ctx, app.config.Database.URL); err != nil {
		return err
	}

	dbPool, err := pgxpool.New(ctx, app.config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to create database pool: %w", err)
	}
	app.dbPool = dbPool

	model, err := gemini.NewClient(ctx, app.logger, app.config.LLM)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	workers.RegisterAll(app.registry, workers.Deps{
		Store: postgres.NewRecordStore(dbPool, app.logger),
		Model: model,
	})

	app.logger.Info("task types registered", "worker_types", app.registry.Types())
	return nil
}

// run starts the worker pool, the scheduler and the HTTP server, then
// blocks until a shutdown signal arrives and tears everything down in
// reverse order.
func (app *application) run() error {
	app.pool.Start()
	if app.scheduler != nil {
		app.scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", app.config.Server.Host, app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case sig := <-stop:
		app.logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("HTTP server shutdown failed", "error", err)
	}

	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	app.pool.Stop()

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	app.logger.Info("shutdown complete")
	return nil
}
