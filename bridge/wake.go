package bridge

import (
	"context"
	"sync"
)

type outcome uint8

const (
	unresolved outcome = iota
	more
	complete
	failed
)

func (o outcome) String() string {
	switch o {
	case more:
		return "more"
	case complete:
		return "complete"
	case failed:
		return "failed"
	default:
		return "unresolved"
	}
}

// wakeSlot is a one-shot continuation the consumer waits on.
// The first resolution wins, later ones are ignored.
type wakeSlot struct {
	once sync.Once
	done chan struct{}

	// res and err are written once, before done is closed.
	res outcome
	err error
}

func newWakeSlot() *wakeSlot {
	return &wakeSlot{done: make(chan struct{})}
}

func (w *wakeSlot) resolve(res outcome, err error) {
	w.once.Do(func() {
		w.res = res
		w.err = err
		close(w.done)
	})
}

func (w *wakeSlot) resolveMore() { w.resolve(more, nil) }

func (w *wakeSlot) resolveComplete() { w.resolve(complete, nil) }

func (w *wakeSlot) resolveFailed(err error) { w.resolve(failed, err) }

// await blocks until the slot is resolved or ctx is done.
func (w *wakeSlot) await(ctx context.Context) (outcome, error) {
	select {
	case <-w.done:
		return w.res, w.err
	case <-ctx.Done():
		return unresolved, ctx.Err()
	}
}
