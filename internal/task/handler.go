package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Handler is the contract every task-type implementation satisfies.
// Process runs the business logic for one task and may block on I/O
// (LLM calls, database reads); the worker pool bounds it with a deadline
// through ctx. Implementations should return promptly once ctx is done,
// though the pool does not depend on it.
type Handler interface {
	// Process executes the task and returns its result, or an error on
	// any internal failure.
	Process(ctx context.Context, payload map[string]any) (any, error)
}

// HandlerFactory produces a fresh Handler instance for one task execution.
// Handlers share nothing with each other; each execution is isolated.
type HandlerFactory func() Handler

// Outcome is the structured result of executing a task. Exactly one of
// Result or Error is meaningful, selected by Success.
type Outcome struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Execute runs h.Process and converts any failure, including a panic, into
// an Outcome. This wrapper is what the worker pool calls: a misbehaving
// handler can never crash a worker loop or leak an unhandled panic into it.
func Execute(
	ctx context.Context,
	h Handler,
	id uuid.UUID,
	payload map[string]any,
	logger *slog.Logger,
) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panicked", "task_id", id, "panic", r)
			outcome = Outcome{Success: false, Error: fmt.Sprintf("handler panic: %v", r)}
		}
	}()

	logger.Info("handler starting", "task_id", id)

	result, err := h.Process(ctx, payload)
	if err != nil {
		logger.Error("handler failed", "task_id", id, "error", err)
		return Outcome{Success: false, Error: err.Error()}
	}

	logger.Info("handler completed", "task_id", id)
	return Outcome{Success: true, Result: result}
}
