package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/sirupsen/logrus"
)

// DefaultPoolSize is the number of workers used when none is configured
const DefaultPoolSize = 10

// ErrPoolStopped is returned when a Job is enqueued on a Pool that is not running
var ErrPoolStopped = errors.New("Pool is not running")

// ExecutorFunc adapts a function to the Executor interface
type ExecutorFunc func(context.Context, bridge.Element) error

func (f ExecutorFunc) Execute(ctx context.Context, el bridge.Element) error {
	return f(ctx, el)
}

// Job is a single execution of a stream's executor for one element
type Job struct {
	Stream   string
	Element  bridge.Element
	Executor Executor
}

// Pool runs Jobs on a fixed number of workers
type Pool struct {
	logger logrus.FieldLogger

	runningMu sync.RWMutex
	running   bool
	stopped   bool

	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	quit     chan struct{}
	quitOnce sync.Once

	size int
	jobs chan Job
}

// NewPool constructs a Pool of size workers, DefaultPoolSize when size is not positive
func NewPool(logger logrus.FieldLogger, size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		quit:   make(chan struct{}),
		size:   size,
		jobs:   make(chan Job),
	}
}

// Start spawns the workers. Starting a running or stopped Pool does nothing.
func (pool *Pool) Start() {
	pool.runningMu.Lock()
	defer pool.runningMu.Unlock()

	if pool.running || pool.stopped {
		return
	}
	pool.running = true

	pool.wg.Add(pool.size)
	for i := 0; i < pool.size; i++ {
		go func() {
			defer pool.wg.Done()

			for job := range pool.jobs {
				pool.execute(job)
			}
		}()
	}
}

// Enqueue blocks until a worker accepts the job or the Pool is stopped
func (pool *Pool) Enqueue(job Job) error {
	pool.runningMu.RLock()
	defer pool.runningMu.RUnlock()

	if !pool.running {
		return ErrPoolStopped
	}

	select {
	case pool.jobs <- job:
		return nil
	case <-pool.quit:
		return ErrPoolStopped
	}
}

// Stop stops accepting jobs and waits for the running ones to return before
// the provided context is done. Running jobs are cancelled if it is.
func (pool *Pool) Stop(ctx context.Context) error {
	// unblocks pending Enqueue calls so the lock can be taken
	pool.quitOnce.Do(func() { close(pool.quit) })

	pool.runningMu.Lock()
	if pool.stopped || !pool.running {
		pool.stopped = true
		pool.runningMu.Unlock()
		return nil
	}
	pool.running = false
	pool.stopped = true
	close(pool.jobs)
	pool.runningMu.Unlock()

	done := make(chan struct{})
	go func() {
		pool.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		pool.cancel()
		return ctx.Err()
	case <-done:
		pool.cancel()
		return nil
	}
}

func (pool *Pool) execute(job Job) {
	logger := pool.logger.
		WithField("stream", job.Stream).
		WithField("kind", job.Element.Kind)

	defer func() {
		if r := recover(); r != nil {
			logger.WithError(fmt.Errorf("%v", r)).Error("Executor panicked")
		}
	}()

	if err := job.Executor.Execute(pool.ctx, job.Element); err != nil {
		logger.WithError(err).Error("Execution failed")
		return
	}

	logger.Debug("Execution succeeded")
}
