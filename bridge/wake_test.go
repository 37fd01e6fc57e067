package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWakeSlotFirstResolutionWins(t *testing.T) {
	w := newWakeSlot()
	boom := errors.New("boom")

	w.resolveFailed(boom)
	w.resolveMore()
	w.resolveComplete()

	res, err := w.await(context.Background())
	assert.Equal(t, failed, res)
	assert.Same(t, boom, err)
}

func TestWakeSlotAwaitBlocksUntilResolved(t *testing.T) {
	w := newWakeSlot()

	go func() {
		time.Sleep(10 * time.Millisecond)
		w.resolveMore()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := w.await(ctx)
	assert.NoError(t, err)
	assert.Equal(t, more, res)
}

func TestWakeSlotAwaitCancelled(t *testing.T) {
	w := newWakeSlot()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	res, err := w.await(ctx)
	assert.Equal(t, unresolved, res)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "more", more.String())
	assert.Equal(t, "complete", complete.String())
	assert.Equal(t, "failed", failed.String())
	assert.Equal(t, "unresolved", unresolved.String())
}
