// Package worker runs the fixed-size pool of loops that pull tasks from
// the queue, dispatch them to registered handlers under a deadline, and
// report outcomes back to the queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sureup/worker-api/internal/queue"
	"github.com/sureup/worker-api/internal/task"
)

// PoolConfig holds configuration options for the worker pool.
type PoolConfig struct {
	// Concurrency determines how many concurrent worker loops to start.
	// If zero or negative, defaults to 1.
	Concurrency int

	// TaskTimeout is the hard deadline for one task execution.
	TaskTimeout time.Duration

	// DequeueTimeout bounds each blocking Dequeue call; on expiry the loop
	// simply polls again. If zero, defaults to 1 second.
	DequeueTimeout time.Duration

	// FaultBackoff is how long a loop sleeps after a pool-level fault
	// before retrying. If zero, defaults to 1 second.
	FaultBackoff time.Duration
}

// DefaultPoolConfig returns a PoolConfig with the reference defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Concurrency:    100,
		TaskTimeout:    300 * time.Second,
		DequeueTimeout: 1 * time.Second,
		FaultBackoff:   1 * time.Second,
	}
}

// Pool manages the worker loops. No single task or handler failure is
// fatal to the pool: every failure mode is converted into queue state or
// a log line.
type Pool struct {
	queue    queue.TaskQueue
	registry *task.Registry
	config   PoolConfig
	logger   *slog.Logger

	// ctx signals shutdown to all loops
	ctx    context.Context
	cancel context.CancelFunc

	// wg tracks active worker loops for clean shutdown
	wg sync.WaitGroup
}

// NewPool creates a worker pool pulling from q and dispatching through
// registry. Invalid config values are replaced with defaults.
func NewPool(q queue.TaskQueue, registry *task.Registry, cfg PoolConfig, logger *slog.Logger) *Pool {
	if cfg.Concurrency <= 0 {
		logger.Warn("invalid worker concurrency, using default",
			"specified", cfg.Concurrency,
			"default", 1)
		cfg.Concurrency = 1
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 300 * time.Second
	}
	if cfg.DequeueTimeout <= 0 {
		cfg.DequeueTimeout = 1 * time.Second
	}
	if cfg.FaultBackoff <= 0 {
		cfg.FaultBackoff = 1 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		queue:    q,
		registry: registry,
		config:   cfg,
		logger:   logger.With("component", "worker_pool"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Concurrency returns the number of worker loops the pool runs.
func (p *Pool) Concurrency() int {
	return p.config.Concurrency
}

// Start launches the worker loops.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "concurrency", p.config.Concurrency)
	for i := 0; i < p.config.Concurrency; i++ {
		p.wg.Add(1)
		go p.workerLoop(i)
	}
}

// Stop cancels all loops and waits for them to exit, bounded by the task
// timeout plus slack so one stuck handler cannot hang shutdown forever.
func (p *Pool) Stop() {
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
	case <-time.After(p.config.TaskTimeout + 5*time.Second):
		p.logger.Error("worker pool shutdown timed out, abandoning stuck loops")
	}
}

// workerLoop is one of the N concurrent dequeue-dispatch loops. It only
// returns when the pool shuts down.
func (p *Pool) workerLoop(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Debug("worker started")

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("worker stopping")
			return
		default:
		}

		if err := p.runOnce(logger); err != nil {
			// A fault in the dispatch logic itself, not in a handler.
			// Log it, back off briefly, keep the loop alive.
			logger.Error("worker loop fault", "error", err)
			select {
			case <-p.ctx.Done():
			case <-time.After(p.config.FaultBackoff):
			}
		}
	}
}

// runOnce performs a single dequeue-dispatch cycle. Handler failures are
// recorded in the queue and do not produce an error; only pool-level
// faults (including recovered panics) do.
func (p *Pool) runOnce(logger *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker loop panic: %v", r)
		}
	}()

	snapshot, err := p.queue.Dequeue(p.ctx, p.config.DequeueTimeout)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Shutdown in progress; the loop exits on the next select.
			return nil
		}
		return fmt.Errorf("dequeue failed: %w", err)
	}
	if snapshot == nil {
		// Timed out with no pending task; poll again.
		return nil
	}

	p.dispatch(logger, snapshot)
	return nil
}

// dispatch resolves the handler for one dequeued task, executes it under
// the pool's deadline, and reports the outcome back to the queue.
func (p *Pool) dispatch(logger *slog.Logger, snapshot *task.Snapshot) {
	logger = logger.With("task_id", snapshot.ID, "task_type", snapshot.Type)

	factory, err := p.registry.Handler(snapshot.Type)
	if err != nil {
		// Lazy type validation: a typo'd type becomes a failed task, not
		// a crashed worker.
		logger.Error("no handler for task type", "error", err)
		p.markFailed(logger, snapshot, err.Error())
		tasksProcessed.WithLabelValues("failed", snapshot.Type).Inc()
		return
	}

	start := time.Now()
	queueLatency.WithLabelValues(snapshot.Type).Observe(start.Sub(snapshot.EnqueuedAt).Seconds())

	execCtx, cancel := context.WithTimeout(p.ctx, p.config.TaskTimeout)
	defer cancel()

	// Execute in its own goroutine so the loop can stop awaiting a handler
	// that ignores the deadline. The abandoned execution keeps running in
	// the background; its late outcome is discarded by the queue's
	// terminal-transition guard.
	outcomeCh := make(chan task.Outcome, 1)
	go func() {
		outcomeCh <- task.Execute(execCtx, factory(), snapshot.ID, snapshot.Payload, logger)
	}()

	var outcome task.Outcome
	select {
	case outcome = <-outcomeCh:
	case <-execCtx.Done():
		logger.Error("task timed out", "timeout", p.config.TaskTimeout)
		p.markFailed(logger, snapshot,
			fmt.Sprintf("task timed out after %s", p.config.TaskTimeout))
		tasksProcessed.WithLabelValues("timeout", snapshot.Type).Inc()
		return
	}

	taskDuration.WithLabelValues(snapshot.Type).Observe(time.Since(start).Seconds())

	if outcome.Success {
		if err := p.queue.MarkCompleted(context.Background(), snapshot.ID, outcome.Result); err != nil {
			logger.Error("failed to mark task completed", "error", err)
		}
		logger.Info("task completed", "duration", time.Since(start))
		tasksProcessed.WithLabelValues("success", snapshot.Type).Inc()
		return
	}

	p.markFailed(logger, snapshot, outcome.Error)
	logger.Error("task failed", "error", outcome.Error)
	tasksProcessed.WithLabelValues("failed", snapshot.Type).Inc()
}

// markFailed records a failure, using a fresh context so shutdown does not
// lose the terminal transition.
func (p *Pool) markFailed(logger *slog.Logger, snapshot *task.Snapshot, msg string) {
	if err := p.queue.MarkFailed(context.Background(), snapshot.ID, msg); err != nil {
		logger.Error("failed to mark task failed", "error", err)
	}
}
