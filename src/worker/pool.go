package worker

import (
	"context"
	"log"
	"runtime"
	"sync"

	"screen-translate-overlay/src/scheduler"
)

// Cycle is one unit of background work: a capture + detection pass.
type Cycle func(ctx context.Context) scheduler.CycleResult

// ResultCallback is invoked on cycle completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(res scheduler.CycleResult)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
// Cycles run to completion; the pool never cancels or abandons one.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx   context.Context
	cycle Cycle
	cb    ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				log.Printf("Worker: starting cycle")
				res := j.cycle(j.ctx)
				log.Printf("Worker: cycle completed, stage=%s sentences=%d err=%v", res.Stage, len(res.Sentences), res.Err)
				j.cb(res)
			}
		}()
	}
}

// Submit enqueues a cycle if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, cycle Cycle, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, cycle: cycle, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
