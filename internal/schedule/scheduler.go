// Package schedule enqueues recurring tasks on a cron schedule. The only
// recurring task today is daily practice generation; the scheduler is just
// another enqueuer from the queue's point of view.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sureup/worker-api/internal/queue"
	"github.com/sureup/worker-api/internal/task"
	"github.com/sureup/worker-api/internal/workers"
)

// Scheduler owns the cron runner and the queue it feeds.
type Scheduler struct {
	cron   *cron.Cron
	queue  queue.TaskQueue
	logger *slog.Logger
}

// New creates a scheduler over q and registers the daily task generation
// entry with the given cron spec (standard five-field syntax, e.g.
// "0 2 * * *" for 02:00 every day).
func New(q queue.TaskQueue, spec string, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		queue:  q,
		logger: logger.With("component", "scheduler"),
	}

	if _, err := s.cron.AddFunc(spec, s.enqueueDailyTasks); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins firing scheduled entries.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop halts the scheduler and waits for any in-flight enqueue to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// enqueueDailyTasks submits one daily_task_generator task. Failures are
// logged and absorbed; the next scheduled firing will try again.
func (s *Scheduler) enqueueDailyTasks() {
	payload := map[string]any{
		"trigger_time": time.Now().UTC().Format(time.RFC3339),
		"trigger_type": "scheduled",
	}

	id, err := s.queue.Enqueue(
		context.Background(),
		workers.TaskTypeDailyTaskGenerator,
		payload,
		task.PriorityDefault,
	)
	if err != nil {
		s.logger.Error("failed to enqueue scheduled daily task generation", "error", err)
		return
	}

	s.logger.Info("scheduled daily task generation enqueued", "task_id", id)
}
