// Package emitter provides an in-memory, synchronous bridge.Source.
//
// Handlers run on the goroutine that calls Emit, in registration order.
// The watchers in this module embed an Emitter to become Sources.
package emitter

import (
	"io"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/mickyco94/pullstream/bridge"
	"github.com/sirupsen/logrus"
)

type registration struct {
	handle  bridge.Handle
	handler bridge.Handler
}

// Emitter is a synchronous pub-sub Source keyed by kind.
type Emitter struct {
	logger logrus.FieldLogger

	mu            sync.RWMutex
	registrations map[bridge.Kind][]registration
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger used to report recovered handler panics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Emitter with no registrations.
func New(opts ...Option) *Emitter {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	e := &Emitter{
		logger:        logger,
		registrations: make(map[bridge.Kind][]registration),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers handler for kind and returns the handle that
// removes it again.
func (e *Emitter) Subscribe(kind bridge.Kind, handler bridge.Handler) bridge.Handle {
	handle := bridge.Handle(uuid.NewString())

	e.mu.Lock()
	defer e.mu.Unlock()

	e.registrations[kind] = append(e.registrations[kind], registration{
		handle:  handle,
		handler: handler,
	})

	return handle
}

// Unsubscribe removes the registration for handle. Unknown handles are
// ignored.
func (e *Emitter) Unsubscribe(kind bridge.Kind, handle bridge.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	regs := e.registrations[kind]
	for i, reg := range regs {
		if reg.handle != handle {
			continue
		}

		// Copy so that an Emit iterating the old slice is unaffected.
		remaining := make([]registration, 0, len(regs)-1)
		remaining = append(remaining, regs[:i]...)
		remaining = append(remaining, regs[i+1:]...)

		if len(remaining) == 0 {
			delete(e.registrations, kind)
		} else {
			e.registrations[kind] = remaining
		}
		return
	}
}

// Emit fires an occurrence of kind and returns the number of handlers
// invoked. Handlers are called without the lock held, so they may
// subscribe or unsubscribe.
func (e *Emitter) Emit(kind bridge.Kind, args ...any) int {
	e.mu.RLock()
	regs := e.registrations[kind]
	e.mu.RUnlock()

	for _, reg := range regs {
		e.safeCall(kind, reg.handler, args)
	}

	return len(regs)
}

// safeCall invokes a handler and recovers from any panic.
func (e *Emitter) safeCall(kind bridge.Kind, handler bridge.Handler, args []any) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.
				WithField("kind", kind).
				WithField("panic", r).
				WithField("stack", string(debug.Stack())).
				Error("Handler panicked")
		}
	}()
	handler(args...)
}

// Count returns the number of registrations for kind.
func (e *Emitter) Count(kind bridge.Kind) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.registrations[kind])
}

// Total returns the number of registrations across all kinds.
func (e *Emitter) Total() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := 0
	for _, regs := range e.registrations {
		total += len(regs)
	}
	return total
}

var _ bridge.Source = (*Emitter)(nil)
