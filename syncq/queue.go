// Package syncq decouples non-critical synchronization work from the
// tracker's update path. Tasks flow through a buffered channel consumed by
// one background worker per queue; there is no ordering guarantee relative
// to queries and no flush on close.
package syncq

import (
	"sync"

	"github.com/voxelhive/warden/models"
)

// DefaultCapacity bounds the number of tasks waiting for the worker.
const DefaultCapacity = 256

// Handler consumes one sync task. Handlers run on the worker goroutine and
// must not touch tracker state.
type Handler func(models.SyncTask)

// Queue is a single-producer/single-consumer task queue with a dedicated
// worker goroutine.
type Queue struct {
	tasks   chan models.SyncTask
	stop    chan struct{}
	done    chan struct{}
	handler Handler

	closeOnce sync.Once
}

// New starts a queue and its worker. A nil handler discards tasks.
func New(capacity int, h Handler) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	q := &Queue{
		tasks:   make(chan models.SyncTask, capacity),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		handler: h,
	}
	go q.work()
	return q
}

func (q *Queue) work() {
	defer close(q.done)

	for {
		select {
		case <-q.stop:
			return

		case task := <-q.tasks:
			if q.handler != nil {
				q.handler(task)
			}
			instrumentTaskProcessed()
		}
	}
}

// TryEnqueue offers a task without blocking. It reports false when the
// buffer is full; producers treat that as a dropped best-effort task.
func (q *Queue) TryEnqueue(task models.SyncTask) bool {
	select {
	case q.tasks <- task:
		instrumentTaskEnqueued()
		return true
	default:
		instrumentTaskDropped()
		return false
	}
}

// Len returns the number of tasks waiting for the worker.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Close stops the worker and waits for it to exit. Unconsumed tasks are
// dropped.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.stop)
		<-q.done
	})
}
