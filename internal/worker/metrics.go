package worker

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sureup/worker-api/internal/queue"
)

// Prometheus metrics for task processing.
var (
	// tasksProcessed counts terminal task outcomes by status and type.
	// status is "success", "failed" or "timeout".
	tasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_tasks_processed_total",
		Help: "The total number of processed tasks",
	}, []string{"status", "type"})

	// taskDuration tracks handler execution latency in seconds.
	taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_task_duration_seconds",
		Help:    "Duration of task execution",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	// queueLatency tracks how long a task waited between enqueue and dequeue.
	queueLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_queue_latency_seconds",
		Help:    "Time spent in queue before processing",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
)

// QueueStatsCollector exposes the queue's aggregate counters as gauges,
// reading them on each scrape.
type QueueStatsCollector struct {
	queue  queue.TaskQueue
	logger *slog.Logger

	total      *prometheus.Desc
	pending    *prometheus.Desc
	processing *prometheus.Desc
	completed  *prometheus.Desc
	failed     *prometheus.Desc
}

// NewQueueStatsCollector creates a collector over q. Register it on the
// default registerer to expose worker_queue_tasks on /metrics.
func NewQueueStatsCollector(q queue.TaskQueue, logger *slog.Logger) *QueueStatsCollector {
	desc := func(state string) *prometheus.Desc {
		return prometheus.NewDesc(
			"worker_queue_tasks",
			"Number of tasks per lifecycle state",
			nil,
			prometheus.Labels{"state": state},
		)
	}
	return &QueueStatsCollector{
		queue:      q,
		logger:     logger,
		total:      desc("total"),
		pending:    desc("pending"),
		processing: desc("processing"),
		completed:  desc("completed"),
		failed:     desc("failed"),
	}
}

// Describe implements prometheus.Collector.
func (c *QueueStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.pending
	ch <- c.processing
	ch <- c.completed
	ch <- c.failed
}

// Collect implements prometheus.Collector.
func (c *QueueStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.queue.Stats(context.Background())
	if err != nil {
		c.logger.Error("failed to collect queue stats", "error", err)
		return
	}

	gauge := func(desc *prometheus.Desc, value int) prometheus.Metric {
		return prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(value))
	}
	ch <- gauge(c.total, stats.Total)
	ch <- gauge(c.pending, stats.Pending)
	ch <- gauge(c.processing, stats.Processing)
	ch <- gauge(c.completed, stats.Completed)
	ch <- gauge(c.failed, stats.Failed)
}
