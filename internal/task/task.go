package task

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a task
type Status string

// Possible task status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether a status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Priority bounds. Lower numeric value dequeues first.
const (
	PriorityHighest = 1
	PriorityDefault = 5
	PriorityLowest  = 10
)

// ValidPriority reports whether p is inside the accepted [1,10] range.
func ValidPriority(p int) bool {
	return p >= PriorityHighest && p <= PriorityLowest
}

// Record is the full task entry owned by the queue. Workers never mutate a
// Record directly; all transitions go through the queue's API.
type Record struct {
	// ID is the unique identifier assigned at enqueue time
	ID uuid.UUID `json:"task_id"`

	// Type is the string key identifying which handler processes the task.
	// It is validated lazily, when a worker attempts dispatch.
	Type string `json:"task_type"`

	// Payload is opaque task data passed verbatim to the handler
	Payload map[string]any `json:"task_data,omitempty"`

	// Priority is an integer in [1,10]; 1 is the highest priority
	Priority int `json:"priority"`

	// Status is the current lifecycle state
	Status Status `json:"status"`

	// EnqueuedAt is set once at creation, in UTC
	EnqueuedAt time.Time `json:"enqueued_at"`

	// StartedAt is set when a worker dequeues the task
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is set on the terminal transition
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Result is present only for completed tasks
	Result any `json:"result,omitempty"`

	// Error is present only for failed tasks
	Error string `json:"error,omitempty"`
}

// Snapshot is the slice of a Record handed to a worker on dequeue.
// The full record stays in the queue's internal table.
type Snapshot struct {
	ID         uuid.UUID      `json:"task_id"`
	Type       string         `json:"task_type"`
	Payload    map[string]any `json:"task_data"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

// QueueStats is the derived aggregate over all task records. At every
// observable point Pending+Processing+Completed+Failed == Total.
type QueueStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
