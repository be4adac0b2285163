package nmt

import (
	"context"
	"sync"
)

// workerPool runs blocking inference calls on a fixed number of workers with
// a bounded queue. One queued unit is one batch, so queue depth directly caps
// the VRAM an engine can commit to beyond what is already executing. The
// bound is a design parameter, not a tuning knob.
type workerPool struct {
	tasks     chan poolTask
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type poolTask struct {
	fn   func() error
	done chan error
}

// newWorkerPool starts workers goroutines consuming a queue of depth
// queueDepth.
func newWorkerPool(workers, queueDepth int) *workerPool {
	p := &workerPool{tasks: make(chan poolTask, queueDepth)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for t := range p.tasks {
				t.done <- t.fn()
			}
		}()
	}
	return p
}

// Do queues fn and waits for it to finish. When the queue is full, Do blocks
// until a slot frees or ctx is cancelled; that backpressure is deliberate. If
// ctx is cancelled after fn is already dispatched, fn still runs to
// completion on the worker and its result is discarded.
func (p *workerPool) Do(ctx context.Context, fn func() error) error {
	t := poolTask{fn: fn, done: make(chan error, 1)}
	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and joins the workers. In-flight tasks complete.
func (p *workerPool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
		p.wg.Wait()
	})
}
