package bridge

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Bridge buffers the data occurrences of a Source and hands them out in
// firing order through Next or All.
//
// A Bridge is single-pass: once its sequence has ended it stays ended.
type Bridge struct {
	src    Source
	name   string
	logger logrus.FieldLogger

	// mu guards the producer side.
	mu       sync.Mutex
	pending  []Element
	slot     *wakeSlot
	subs     []subscription
	released bool
	done     chan struct{}

	closed atomic.Bool

	// pullMu guards the consumer side.
	pullMu   sync.Mutex
	waiting  *wakeSlot
	batch    []Element
	finished bool
}

// New subscribes to every kind listed in roles and returns the Bridge
// exposing their occurrences.
func New(src Source, roles Roles, opts ...Option) *Bridge {
	slot := newWakeSlot()
	b := &Bridge{
		src:     src,
		logger:  discardLogger(),
		slot:    slot,
		waiting: slot,
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	if b.name != "" {
		b.logger = b.logger.WithField("bridge", b.name)
	}

	for _, kind := range roles.Data {
		b.subscribe(kind, b.onData(kind))
	}
	for _, kind := range roles.Completion {
		b.subscribe(kind, b.onComplete(kind))
	}
	for _, kind := range roles.Failure {
		b.subscribe(kind, b.onFailure(kind))
	}

	b.logger.
		WithField("data", len(roles.Data)).
		WithField("completion", len(roles.Completion)).
		WithField("failure", len(roles.Failure)).
		Debug("Bridge subscribed")

	return b
}

// subscribe installs h on the Source and records the registration. A
// registration made after the bridge was released is removed straight away.
func (b *Bridge) subscribe(kind Kind, h Handler) {
	handle := b.src.Subscribe(kind, h)

	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		b.src.Unsubscribe(kind, handle)
		return
	}
	b.subs = append(b.subs, subscription{kind: kind, handle: handle})
	b.mu.Unlock()
}

func (b *Bridge) onData(kind Kind) Handler {
	return func(args ...any) {
		el := Element{Kind: kind, Args: append([]any(nil), args...)}

		b.mu.Lock()
		defer b.mu.Unlock()

		if b.released {
			return
		}

		b.pending = append(b.pending, el)
		b.slot.resolveMore()
		b.slot = newWakeSlot()
	}
}

func (b *Bridge) onComplete(kind Kind) Handler {
	return func(args ...any) {
		b.terminate(kind, complete, nil)
	}
}

func (b *Bridge) onFailure(kind Kind) Handler {
	return func(args ...any) {
		b.terminate(kind, failed, failure(kind, args))
	}
}

// terminate releases every subscription and resolves the current slot with
// res. Only the first call has any effect.
func (b *Bridge) terminate(kind Kind, res outcome, err error) {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.released = true
	subs := b.subs
	b.subs = nil
	slot := b.slot
	b.mu.Unlock()

	for _, sub := range subs {
		b.src.Unsubscribe(sub.kind, sub.handle)
	}
	close(b.done)

	b.logger.
		WithField("kind", kind).
		WithField("outcome", res).
		WithField("subscriptions", len(subs)).
		Debug("Bridge released")

	if res == failed {
		slot.resolveFailed(err)
	} else {
		slot.resolveComplete()
	}
}

// Next returns the next Element.
//
// ok is false once the sequence has ended. A Source Failure is returned
// exactly once as err; every later call reports the end of the sequence.
// If ctx is done while waiting, ctx.Err() is returned and the Bridge stays
// usable.
func (b *Bridge) Next(ctx context.Context) (el Element, ok bool, err error) {
	b.pullMu.Lock()
	defer b.pullMu.Unlock()

	for {
		if b.closed.Load() {
			b.finish()
		}

		if len(b.batch) > 0 {
			el = b.batch[0]
			b.batch[0] = Element{}
			b.batch = b.batch[1:]
			return el, true, nil
		}

		if b.finished {
			return Element{}, false, nil
		}

		res, werr := b.waiting.await(ctx)
		switch res {
		case more:
			b.mu.Lock()
			b.batch, b.pending = b.pending, nil
			b.waiting = b.slot
			b.mu.Unlock()
		case complete:
			b.finish()
			return Element{}, false, nil
		case failed:
			b.finish()
			return Element{}, false, werr
		default:
			return Element{}, false, werr
		}
	}
}

func (b *Bridge) finish() {
	b.finished = true
	b.batch = nil
}

// All returns the remaining Elements as a sequence. A Source Failure or a
// ctx error is yielded once as the final pair. Ending the loop early closes
// the Bridge.
func (b *Bridge) All(ctx context.Context) iter.Seq2[Element, error] {
	return func(yield func(Element, error) bool) {
		defer b.Close()

		for {
			el, ok, err := b.Next(ctx)
			if err != nil {
				yield(Element{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(el, nil) {
				return
			}
		}
	}
}

// Close releases the subscriptions and ends the sequence without error.
// Elements not yet pulled are discarded. Close is safe to call multiple
// times and after the sequence has ended.
func (b *Bridge) Close() {
	b.closed.Store(true)

	b.mu.Lock()
	b.pending = nil
	b.mu.Unlock()

	b.terminate("", complete, nil)
}

// Done is closed once the subscriptions have been released.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Collect pulls every Element of b until the sequence ends.
// Elements pulled before a failure are returned alongside it.
func Collect(ctx context.Context, b *Bridge) ([]Element, error) {
	var out []Element
	for el, err := range b.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, el)
	}
	return out, nil
}
