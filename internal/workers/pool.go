// Package workers provides a bounded goroutine pool for running many
// independent instrument replays in parallel. Engines share no mutable
// state, so tasks need no synchronization beyond the pool itself.
package workers

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Task represents a unit of work.
type Task interface {
	Execute() error
}

// TaskFunc is a function used as a Task.
type TaskFunc func() error

// Execute runs the function.
func (f TaskFunc) Execute() error { return f() }

// Pool manages a fixed set of worker goroutines draining a task queue.
type Pool struct {
	logger *zap.Logger

	taskQueue chan Task
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewPool starts numWorkers goroutines with a queue of queueSize tasks.
func NewPool(logger *zap.Logger, numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = numWorkers
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		logger:    logger,
		taskQueue: make(chan Task, queueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}
			p.run(id, task)
		}
	}
}

func (p *Pool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.failed.Add(1)
			p.logger.Error("task panic",
				zap.Int("worker", id),
				zap.Any("panic", r),
			)
		}
	}()

	if err := task.Execute(); err != nil {
		p.failed.Add(1)
		p.logger.Warn("task failed", zap.Int("worker", id), zap.Error(err))
		return
	}
	p.completed.Add(1)
}

// Submit enqueues a task, blocking while the queue is full.
func (p *Pool) Submit(task Task) {
	p.submitted.Add(1)
	p.taskQueue <- task
}

// Close stops accepting tasks and waits for in-flight work to drain.
func (p *Pool) Close() {
	close(p.taskQueue)
	p.wg.Wait()
	p.cancel()
}

// Stats returns submitted, completed and failed counts.
func (p *Pool) Stats() (submitted, completed, failed int64) {
	return p.submitted.Load(), p.completed.Load(), p.failed.Load()
}
