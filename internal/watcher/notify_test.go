package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/mickyco94/pullstream/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyCreate(t *testing.T) {
	basePath := t.TempDir()

	notify, err := NewNotify(logrus.New())
	require.NoError(t, err)
	require.NoError(t, notify.Add(&config.Notify{Path: basePath}))

	b := bridge.New(notify, bridge.Roles{
		Data:       []bridge.Kind{KindCreate},
		Completion: []bridge.Kind{KindStopped},
		Failure:    []bridge.Kind{KindError},
	})

	go notify.Run()

	created := filepath.Join(basePath, "create.txt")
	require.NoError(t, os.WriteFile(created, []byte("foo_bar"), 0644))

	el := pull(t, b, time.Second)
	assert.Equal(t, KindCreate, el.Kind)
	assert.Equal(t, []any{created}, el.Args)

	require.NoError(t, notify.Stop(context.Background()))
	assert.NoError(t, end(t, b, time.Second))
}

func TestNotifyAddMissingPath(t *testing.T) {
	notify, err := NewNotify(logrus.New())
	require.NoError(t, err)
	defer notify.Stop(context.Background())

	assert.Error(t, notify.Add(&config.Notify{Path: filepath.Join(t.TempDir(), "missing")}))
}

func TestNotifyStopTwice(t *testing.T) {
	notify, err := NewNotify(logrus.New())
	require.NoError(t, err)

	go notify.Run()
	time.Sleep(5 * time.Millisecond)

	assert.NoError(t, notify.Stop(context.Background()))
	assert.ErrorIs(t, notify.Stop(context.Background()), ErrAlreadyStopped)
}
