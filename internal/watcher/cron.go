package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/mickyco94/pullstream/emitter"
	"github.com/mickyco94/pullstream/internal/config"
	internal "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Cron is a decorator of the cron lib that fires an occurrence every time a
// schedule is due. The occurrence carries the time it fired at.
type Cron struct {
	*emitter.Emitter

	logger logrus.FieldLogger
	inner  *internal.Cron

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// NewCron constructs a new cron schedule watcher, schedules include seconds
func NewCron(logger logrus.FieldLogger) *Cron {
	return &Cron{
		Emitter: emitter.New(emitter.WithLogger(logger)),
		logger:  logger,
		inner:   internal.New(internal.WithSeconds()),
		done:    make(chan struct{}),
	}
}

// Add registers the schedule of the provided config. Firings are
// occurrences of the configured kind, KindTick when none is set.
func (cron *Cron) Add(cfg *config.Cron) error {
	kind := bridge.Kind(cfg.Kind)
	if kind == "" {
		kind = KindTick
	}

	_, err := cron.inner.AddFunc(cfg.Schedule, func() {
		cron.logger.WithField("kind", kind).Debug("Cron fired")
		cron.Emit(kind, time.Now())
	})
	return err
}

// Run starts the cron scheduler and blocks until Stop is called
func (cron *Cron) Run() {
	cron.mu.Lock()
	if cron.stopped {
		cron.mu.Unlock()
		return
	}
	cron.inner.Start()
	cron.mu.Unlock()

	<-cron.done
}

// Stop shuts down the cron watcher and attempts to wait for any currently
// running firings to return before the provided context is done.
// KindStopped fires once they have.
func (cron *Cron) Stop(ctx context.Context) error {
	cron.mu.Lock()
	if cron.stopped {
		cron.mu.Unlock()
		return ErrAlreadyStopped
	}
	cron.stopped = true
	runningJobsCtx := cron.inner.Stop()
	close(cron.done)
	cron.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-runningJobsCtx.Done():
	}

	cron.Emit(KindStopped)
	return nil
}

var _ bridge.Source = (*Cron)(nil)
