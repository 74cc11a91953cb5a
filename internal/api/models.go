package api

// Common request/response structures

// EnqueueTaskRequest defines the payload for the task enqueue endpoint.
// Priority 0 means "unspecified" and is replaced with the default (5).
type EnqueueTaskRequest struct {
	TaskType string         `json:"task_type" validate:"required,min=1"`
	TaskData map[string]any `json:"task_data" validate:"required"`
	Priority int            `json:"priority"  validate:"omitempty,min=1,max=10"`
}

// EnqueueTaskResponse acknowledges an accepted task. The task id is the
// handle for later status polling.
type EnqueueTaskResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TaskStatusResponse is the full record view returned by the status
// endpoint. Timestamps are RFC 3339 UTC; started/completed are empty until
// the corresponding transition happens.
type TaskStatusResponse struct {
	TaskID      string `json:"task_id"`
	TaskType    string `json:"task_type"`
	Status      string `json:"status"`
	EnqueuedAt  string `json:"enqueued_at"`
	StartedAt   string `json:"started_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
	Result      any    `json:"result,omitempty"`
	Error       string `json:"error,omitempty"`
}

// QueueStatsResponse mirrors the queue's aggregate counters.
type QueueStatsResponse struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// WorkerTypesResponse lists the registered task types and the pool size.
type WorkerTypesResponse struct {
	WorkerTypes []string `json:"worker_types"`
	Concurrency int      `json:"concurrency"`
}
