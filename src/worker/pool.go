package worker

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sync"
)

var errPanicked = errors.New("worker job panicked")

// Job is one unit of background work. It should honor ctx.
type Job func(ctx context.Context) error

// ResultCallback is invoked on job completion (from a worker goroutine).
type ResultCallback func(err error)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx  context.Context
	name string
	run  Job
	cb   ResultCallback
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
				err := runJob(j)
				if err != nil {
					log.Printf("Worker: %s failed: %v", j.name, err)
				}
				if j.cb != nil {
					j.cb(err)
				}
			}
		}()
	}
}

func runJob(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in worker job %s: %v", j.name, r)
			err = errPanicked
		}
	}()
	if err := j.ctx.Err(); err != nil {
		return err
	}
	return j.run(j.ctx)
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, name string, run Job, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, name: name, run: run, cb: cb}:
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
