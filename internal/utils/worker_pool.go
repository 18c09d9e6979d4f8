package utils

import (
	"sync"

	"go.uber.org/zap"
)

// WorkerPool runs jobs on a fixed set of goroutines. The membership engine
// uses it to publish events off the request path without letting goroutines
// grow unbounded under load.
type WorkerPool struct {
	jobs   chan func()
	num    int
	wg     sync.WaitGroup
	quit   chan struct{}
	logger *zap.Logger
}

// NewWorkerPool creates a pool with workerNum goroutines and a job queue of
// queueSize.
func NewWorkerPool(workerNum, queueSize int, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		jobs:   make(chan func(), queueSize),
		num:    workerNum,
		quit:   make(chan struct{}),
		logger: logger,
	}
}

// Start launches the workers. A panicking job is recovered and logged so one
// bad job cannot take a worker down.
func (p *WorkerPool) Start() {
	for i := 0; i < p.num; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.jobs:
					func() {
						defer func() {
							if r := recover(); r != nil {
								p.logger.Error("worker recovered from panic",
									zap.Int("worker", workerID),
									zap.Any("panic", r),
								)
							}
						}()
						job()
					}()
				case <-p.quit:
					return
				}
			}
		}(i)
	}
}

// Submit enqueues a job, blocking while the queue is full.
func (p *WorkerPool) Submit(job func()) {
	p.jobs <- job
}

// TrySubmit enqueues a job without blocking. Returns false when the queue is
// full; the caller decides whether to run inline or drop.
func (p *WorkerPool) TrySubmit(job func()) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Stop signals the workers to exit and waits for them.
func (p *WorkerPool) Stop() {
	close(p.quit)
	p.wg.Wait()
}
