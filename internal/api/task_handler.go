// Package api implements the HTTP surface over the task queue and the
// handler registry: enqueue, status lookup, queue statistics and type
// listing. It is a thin layer; all task semantics live in the queue and
// the worker pool.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sureup/worker-api/internal/api/shared"
	"github.com/sureup/worker-api/internal/queue"
	"github.com/sureup/worker-api/internal/task"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	queue       queue.TaskQueue
	registry    *task.Registry
	concurrency int
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler. concurrency is reported by the
// worker-types endpoint for operational visibility.
func NewTaskHandler(q queue.TaskQueue, registry *task.Registry, concurrency int, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		queue:       q,
		registry:    registry,
		concurrency: concurrency,
		logger:      logger.With("component", "task_handler"),
	}
}

// EnqueueTask handles POST /tasks/enqueue requests. The task type is not
// validated here; an unknown type is accepted and fails later, when a
// worker attempts dispatch.
func (h *TaskHandler) EnqueueTask(w http.ResponseWriter, r *http.Request) {
	var req EnqueueTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if req.Priority == 0 {
		req.Priority = task.PriorityDefault
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	id, err := h.queue.Enqueue(r.Context(), req.TaskType, req.TaskData, req.Priority)
	if err != nil {
		h.logger.Error("failed to enqueue task", "error", err, "task_type", req.TaskType)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to enqueue task")
		return
	}

	h.logger.Info("task enqueued",
		"task_id", id,
		"task_type", req.TaskType,
		"priority", req.Priority)

	shared.RespondWithJSON(w, r, http.StatusOK, EnqueueTaskResponse{
		TaskID:  id.String(),
		Status:  string(task.StatusPending),
		Message: "task enqueued",
	})
}

// GetTaskStatus handles GET /tasks/{taskID} requests.
func (h *TaskHandler) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	record, err := h.queue.TaskStatus(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to read task status", "error", err, "task_id", id)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to read task status")
		return
	}
	if record == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordToResponse(record))
}

// GetQueueStats handles GET /queue/stats requests.
func (h *TaskHandler) GetQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to read queue stats", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to read queue stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, QueueStatsResponse{
		Total:      stats.Total,
		Pending:    stats.Pending,
		Processing: stats.Processing,
		Completed:  stats.Completed,
		Failed:     stats.Failed,
	})
}

// ListWorkerTypes handles GET /workers/types requests.
func (h *TaskHandler) ListWorkerTypes(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, WorkerTypesResponse{
		WorkerTypes: h.registry.Types(),
		Concurrency: h.concurrency,
	})
}

// recordToResponse converts a task.Record to a TaskStatusResponse.
func recordToResponse(record *task.Record) TaskStatusResponse {
	resp := TaskStatusResponse{
		TaskID:     record.ID.String(),
		TaskType:   record.Type,
		Status:     string(record.Status),
		EnqueuedAt: record.EnqueuedAt.Format(time.RFC3339),
		Result:     record.Result,
		Error:      record.Error,
	}
	if record.StartedAt != nil {
		resp.StartedAt = record.StartedAt.Format(time.RFC3339)
	}
	if record.CompletedAt != nil {
		resp.CompletedAt = record.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
