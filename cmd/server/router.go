package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sureup/worker-api/internal/api"
	apiMiddleware "github.com/sureup/worker-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	taskHandler := api.NewTaskHandler(
		app.queue,
		app.registry,
		app.pool.Concurrency(),
		app.logger,
	)

	// Register routes
	r.Post("/tasks/enqueue", taskHandler.EnqueueTask)
	r.Get("/tasks/{taskID}", taskHandler.GetTaskStatus)
	r.Get("/queue/stats", taskHandler.GetQueueStats)
	r.Get("/workers/types", taskHandler.ListWorkerTypes)

	// Operational endpoints
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
