package syncq

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncTasksEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_tasks_enqueued_total",
		Help: "The number of sync tasks accepted by the queue.",
	})

	syncTasksDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_tasks_dropped_total",
		Help: "The number of sync tasks dropped because the queue was full.",
	})

	syncTasksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_tasks_processed_total",
		Help: "The number of sync tasks consumed by the worker.",
	})
)

func instrumentTaskEnqueued() {
	syncTasksEnqueued.Inc()
}

func instrumentTaskDropped() {
	syncTasksDropped.Inc()
}

func instrumentTaskProcessed() {
	syncTasksProcessed.Inc()
}
