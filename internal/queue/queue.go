// Package queue provides the task queue contract consumed by the worker
// pool and the HTTP layer, plus an in-memory priority queue implementation.
// The contract is deliberately backend-agnostic so a durable backend
// (Redis, an external broker) can be substituted without touching the
// worker pool or the registry.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sureup/worker-api/internal/config"
	"github.com/sureup/worker-api/internal/task"
)

// Common errors returned by TaskQueue implementations
var (
	// ErrInvalidPriority is returned by Enqueue when priority is outside [1,10].
	ErrInvalidPriority = errors.New("priority must be between 1 and 10")

	// ErrEmptyTaskType is returned by Enqueue when the task type is blank.
	ErrEmptyTaskType = errors.New("task type cannot be empty")
)

// Backend selector values recognized by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// TaskQueue is the queue contract. All methods are safe for concurrent
// callers: multiple enqueuers and multiple dequeuing workers.
type TaskQueue interface {
	// Enqueue creates a new task record in pending state and returns its id.
	// Priority 1 is highest; pass task.PriorityDefault when the caller did
	// not specify one. There is no backpressure: Enqueue always succeeds for
	// valid input. Bounding queue depth is an open extension point.
	Enqueue(ctx context.Context, taskType string, payload map[string]any, priority int) (uuid.UUID, error)

	// Dequeue blocks until a pending task is available or timeout elapses.
	// On timeout it returns (nil, nil); a nil snapshot is not an error.
	// On success it atomically pops the highest-priority pending task,
	// flips it to processing, stamps started_at, and returns a snapshot.
	// Each task is handed to at most one Dequeue call.
	Dequeue(ctx context.Context, timeout time.Duration) (*task.Snapshot, error)

	// MarkCompleted transitions a processing record to completed, storing the
	// result. It is a no-op if the record is unknown or not processing, so a
	// double completion cannot corrupt state.
	MarkCompleted(ctx context.Context, id uuid.UUID, result any) error

	// MarkFailed transitions a processing record to failed with an error
	// message. Same no-op semantics as MarkCompleted.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// TaskStatus returns a read-only copy of the record, or nil if the id
	// is unknown.
	TaskStatus(ctx context.Context, id uuid.UUID) (*task.Record, error)

	// Stats returns the aggregate counters, consistent with current record
	// states.
	Stats(ctx context.Context) (task.QueueStats, error)
}

// New constructs the queue selected by cfg.Backend. Only the memory backend
// is implemented; "redis" and any unknown value fall back to memory with a
// loud warning so a misconfigured deployment is visible in the logs rather
// than silently degraded.
func New(cfg config.QueueConfig, logger *slog.Logger) TaskQueue {
	switch cfg.Backend {
	case BackendMemory:
		logger.Info("using in-memory task queue")
	case BackendRedis:
		logger.Warn("redis queue backend is not implemented, falling back to in-memory queue",
			"configured_backend", cfg.Backend)
	default:
		logger.Warn("unknown queue backend, falling back to in-memory queue",
			"configured_backend", cfg.Backend)
	}
	return NewMemoryQueue(logger)
}
