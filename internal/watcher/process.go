package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/mickyco94/pullstream/emitter"
	"github.com/mickyco94/pullstream/internal/config"
	"github.com/mitchellh/go-ps"
	"github.com/sirupsen/logrus"
)

const defaultProcessInterval = 100 * time.Millisecond

type processEntry struct {
	isRunning bool
	pid       int
}

type occurrence struct {
	kind bridge.Kind
	args []any
}

// Process is a Source that polls the process table. KindOpen and KindClose
// fire with (executable, pid) when a watched executable starts or exits.
// Executables already running when Run starts do not fire KindOpen.
type Process struct {
	*emitter.Emitter

	logger   logrus.FieldLogger
	source   func() ([]ps.Process, error)
	interval time.Duration

	mu      sync.Mutex
	entries map[string]processEntry

	runningMu sync.Mutex
	isRunning bool
	stopped   bool
	close     chan struct{}
	done      chan struct{}
}

// NewProcess constructs a process watcher backed by the OS process table
func NewProcess(logger logrus.FieldLogger) *Process {
	return &Process{
		Emitter:  emitter.New(emitter.WithLogger(logger)),
		logger:   logger,
		source:   ps.Processes,
		interval: defaultProcessInterval,
		entries:  make(map[string]processEntry),
		close:    make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Add starts watching the executable of the provided config
func (p *Process) Add(cfg *config.Process) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.entries[cfg.Executable]; !exists {
		p.entries[cfg.Executable] = processEntry{}
	}
}

// Run polls the process table until Stop is called. If the table cannot be
// read KindError fires and Run returns the error.
func (p *Process) Run() error {
	p.runningMu.Lock()
	if p.stopped {
		p.runningMu.Unlock()
		return ErrAlreadyStopped
	}
	if p.isRunning {
		p.runningMu.Unlock()
		return ErrAlreadyRunning
	}
	p.isRunning = true
	p.runningMu.Unlock()

	defer close(p.done)

	// The initial state acts as the base for open/close transitions
	if err := p.poll(false); err != nil {
		p.fail(err)
		return err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.close:
			return nil
		case <-ticker.C:
			if err := p.poll(true); err != nil {
				p.fail(err)
				return err
			}
		}
	}
}

func (p *Process) fail(err error) {
	p.logger.WithError(err).Error("Failed to read process table")
	p.Emit(KindError, err)
}

// poll refreshes the state of every entry and, when emit is set, fires the
// transitions. Occurrences fire after the lock is released.
func (p *Process) poll(emit bool) error {
	p.mu.Lock()
	source := p.source
	p.mu.Unlock()

	processes, err := source()
	if err != nil {
		return err
	}

	p.mu.Lock()

	running := make(map[string]int)
	for _, process := range processes {
		exe := process.Executable()
		if _, watching := p.entries[exe]; !watching {
			continue
		}
		if _, seen := running[exe]; !seen {
			running[exe] = process.Pid()
		}
	}

	var fired []occurrence
	for exe, entry := range p.entries {
		pid, isRunning := running[exe]

		switch {
		case isRunning && !entry.isRunning:
			fired = append(fired, occurrence{KindOpen, []any{exe, pid}})
			entry = processEntry{isRunning: true, pid: pid}
		case !isRunning && entry.isRunning:
			fired = append(fired, occurrence{KindClose, []any{exe, entry.pid}})
			entry = processEntry{}
		}

		p.entries[exe] = entry
	}

	p.mu.Unlock()

	if !emit {
		return nil
	}

	for _, o := range fired {
		p.logger.WithField("kind", o.kind).WithField("executable", o.args[0]).Debug("Process event")
		p.Emit(o.kind, o.args...)
	}

	return nil
}

// Stop ends the polling loop, waits for it to exit before the provided
// context is done and fires KindStopped. Stopping a watcher that never ran
// only fires KindStopped and prevents it from running.
func (p *Process) Stop(ctx context.Context) error {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()

	if p.stopped {
		return ErrAlreadyStopped
	}
	p.stopped = true

	if !p.isRunning {
		p.Emit(KindStopped)
		return nil
	}
	p.isRunning = false
	close(p.close)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
	}

	p.Emit(KindStopped)
	return nil
}

var _ bridge.Source = (*Process)(nil)
