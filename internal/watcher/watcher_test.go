package watcher

import (
	"context"
	"testing"
	"time"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/stretchr/testify/require"
)

// pull waits for the next element of b, failing the test after timeout
func pull(t *testing.T, b *bridge.Bridge, timeout time.Duration) bridge.Element {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	el, ok, err := b.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok, "sequence ended early")
	return el
}

// end waits for the sequence of b to end and returns its error
func end(t *testing.T, b *bridge.Bridge, timeout time.Duration) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := bridge.Collect(ctx, b)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "timed out")
	return err
}
