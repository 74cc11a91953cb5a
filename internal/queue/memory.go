package queue

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sureup/worker-api/internal/task"
)

// pendingItem is one entry in the priority heap. seq is a monotonically
// increasing counter assigned at enqueue so that tasks with equal priority
// dequeue in FIFO order.
type pendingItem struct {
	priority int
	seq      uint64
	id       uuid.UUID
}

// pendingHeap orders by (priority, seq), smallest first.
type pendingHeap []pendingItem

func (h pendingHeap) Len() int { return len(h) }

func (h pendingHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h pendingHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pendingHeap) Push(x any) { *h = append(*h, x.(pendingItem)) }

func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MemoryQueue is the in-process TaskQueue implementation. A single mutex
// guards the heap, the record table, the stats counters, and the waiter
// list, so concurrent workers and enqueuers never observe a torn record or
// miscounted statistics. Records accumulate for the life of the process;
// there is no eviction of terminal records.
type MemoryQueue struct {
	mu      sync.Mutex
	pending pendingHeap
	records map[uuid.UUID]*task.Record
	stats   task.QueueStats
	seq     uint64

	// waiters holds one signal channel per worker parked in Dequeue, in
	// arrival order. Enqueue wakes exactly the first waiter, so a
	// perpetually-losing waiter cannot starve.
	waiters []chan struct{}

	logger *slog.Logger
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue(logger *slog.Logger) *MemoryQueue {
	return &MemoryQueue{
		records: make(map[uuid.UUID]*task.Record),
		logger:  logger.With("component", "memory_queue"),
	}
}

// Enqueue creates a pending record and wakes one parked worker, if any.
func (q *MemoryQueue) Enqueue(
	ctx context.Context,
	taskType string,
	payload map[string]any,
	priority int,
) (uuid.UUID, error) {
	if taskType == "" {
		return uuid.Nil, ErrEmptyTaskType
	}
	if !task.ValidPriority(priority) {
		return uuid.Nil, ErrInvalidPriority
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	id := uuid.New()
	q.seq++

	q.records[id] = &task.Record{
		ID:         id,
		Type:       taskType,
		Payload:    payload,
		Priority:   priority,
		Status:     task.StatusPending,
		EnqueuedAt: time.Now().UTC(),
	}
	heap.Push(&q.pending, pendingItem{priority: priority, seq: q.seq, id: id})

	q.stats.Total++
	q.stats.Pending++

	q.wakeOneLocked()

	q.logger.Debug("task enqueued",
		"task_id", id,
		"task_type", taskType,
		"priority", priority,
		"pending", q.stats.Pending)

	return id, nil
}

// Dequeue pops the highest-priority pending task, parking the caller until
// one is available or timeout elapses. Timeout returns (nil, nil); context
// cancellation returns the context error.
func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*task.Snapshot, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if snapshot := q.popLocked(); snapshot != nil {
			q.mu.Unlock()
			return snapshot, nil
		}

		wake := make(chan struct{}, 1)
		q.waiters = append(q.waiters, wake)
		q.mu.Unlock()

		select {
		case <-wake:
			// Re-check the heap: another worker may have won the race,
			// in which case we park again.
		case <-timer.C:
			q.abandonWaiter(wake)
			return nil, nil
		case <-ctx.Done():
			q.abandonWaiter(wake)
			return nil, ctx.Err()
		}
	}
}

// popLocked removes and transitions the head of the heap. Caller holds q.mu.
func (q *MemoryQueue) popLocked() *task.Snapshot {
	if q.pending.Len() == 0 {
		return nil
	}

	item := heap.Pop(&q.pending).(pendingItem)
	record := q.records[item.id]

	now := time.Now().UTC()
	record.Status = task.StatusProcessing
	record.StartedAt = &now

	q.stats.Pending--
	q.stats.Processing++

	// Hand the worker its own payload map so handler-side mutation cannot
	// race with status reads of the stored record.
	payload := make(map[string]any, len(record.Payload))
	for k, v := range record.Payload {
		payload[k] = v
	}

	return &task.Snapshot{
		ID:         record.ID,
		Type:       record.Type,
		Payload:    payload,
		EnqueuedAt: record.EnqueuedAt,
	}
}

// wakeOneLocked signals the longest-parked waiter. Caller holds q.mu.
func (q *MemoryQueue) wakeOneLocked() {
	if len(q.waiters) == 0 {
		return
	}
	wake := q.waiters[0]
	q.waiters = q.waiters[1:]
	wake <- struct{}{}
}

// abandonWaiter removes a timed-out or cancelled waiter. If the waiter was
// already signaled, the wakeup is forwarded to the next parked worker so
// the enqueue that produced it is not lost.
func (q *MemoryQueue) abandonWaiter(wake chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, w := range q.waiters {
		if w == wake {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return
		}
	}

	select {
	case <-wake:
		q.wakeOneLocked()
	default:
	}
}

// MarkCompleted transitions a processing record to completed. Unknown ids
// and records that are not processing are ignored.
func (q *MemoryQueue) MarkCompleted(ctx context.Context, id uuid.UUID, result any) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	record, ok := q.records[id]
	if !ok || record.Status != task.StatusProcessing {
		return nil
	}

	now := time.Now().UTC()
	record.Status = task.StatusCompleted
	record.CompletedAt = &now
	record.Result = result

	q.stats.Processing--
	q.stats.Completed++

	return nil
}

// MarkFailed transitions a processing record to failed. Unknown ids and
// records that are not processing are ignored.
func (q *MemoryQueue) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	record, ok := q.records[id]
	if !ok || record.Status != task.StatusProcessing {
		return nil
	}

	now := time.Now().UTC()
	record.Status = task.StatusFailed
	record.CompletedAt = &now
	record.Error = errMsg

	q.stats.Processing--
	q.stats.Failed++

	return nil
}

// TaskStatus returns a copy of the record for id, or nil if unknown.
func (q *MemoryQueue) TaskStatus(ctx context.Context, id uuid.UUID) (*task.Record, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	record, ok := q.records[id]
	if !ok {
		return nil, nil
	}

	copied := *record
	return &copied, nil
}

// Stats returns the current aggregate counters.
func (q *MemoryQueue) Stats(ctx context.Context) (task.QueueStats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats, nil
}

// Compile-time interface check
var _ TaskQueue = (*MemoryQueue)(nil)
