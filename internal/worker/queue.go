// Package worker runs background document extraction decoupled from upload
// requests: the upload handler enqueues a task and returns immediately, and
// a separate worker drains the queue and persists results on its own.
package worker

import (
	"fmt"
	"sync"
	"time"
)

// ExtractionTask asks the worker to process one uploaded document.
type ExtractionTask struct {
	DocumentID    string
	ApplicationID string
	EnqueuedAt    time.Time
}

// Queue is a bounded in-process task queue. Enqueue never blocks: when the
// queue is full the task is rejected and the caller decides what to do,
// which for uploads means logging and moving on.
type Queue struct {
	tasks  chan ExtractionTask
	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue holding at most capacity pending tasks.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{tasks: make(chan ExtractionTask, capacity)}
}

// Enqueue submits a task without blocking.
func (q *Queue) Enqueue(task ExtractionTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("enqueue: queue closed")
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now()
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("enqueue: queue full (%d pending)", cap(q.tasks))
	}
}

// Tasks exposes the consumer side of the queue.
func (q *Queue) Tasks() <-chan ExtractionTask {
	return q.tasks
}

// Close stops accepting tasks. Pending tasks remain consumable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
}

// Pending reports the number of queued tasks.
func (q *Queue) Pending() int {
	return len(q.tasks)
}
