package router

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Dispatcher runs submitted tasks on a single background worker,
// preserving submission order (spec.md §5: "a single Dispatcher per
// Bridge... an ordered task queue"). Dispatch bounds how many tasks
// may be queued ahead of the worker via a weighted semaphore, so a
// slow consumer applies backpressure to callers instead of growing an
// unbounded queue.
type Dispatcher struct {
	jobs chan func()
	sem  *semaphore.Weighted
	done chan struct{}
}

// NewDispatcher starts a Dispatcher whose queue holds up to
// queueDepth pending jobs before Dispatch blocks.
func NewDispatcher(queueDepth int64) *Dispatcher {
	if queueDepth <= 0 {
		queueDepth = 256
	}
	d := &Dispatcher{
		jobs: make(chan func(), queueDepth),
		sem:  semaphore.NewWeighted(queueDepth),
		done: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	for job := range d.jobs {
		job()
		d.sem.Release(1)
	}
	close(d.done)
}

// Dispatch enqueues fn to run on the worker goroutine, blocking until
// ctx permits it (or forever, with context.Background) if the queue
// is saturated. It returns an error only if ctx is cancelled first.
func (d *Dispatcher) Dispatch(ctx context.Context, fn func()) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	d.jobs <- fn
	return nil
}

// Close stops accepting new jobs and waits for the worker to drain
// what is already queued.
func (d *Dispatcher) Close() {
	close(d.jobs)
	<-d.done
}
