package watcher

import (
	"context"
	"testing"
	"time"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/mickyco94/pullstream/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronTicks(t *testing.T) {
	cron := NewCron(logrus.New())
	require.NoError(t, cron.Add(&config.Cron{Schedule: "* * * * * *"}))

	b := bridge.New(cron, bridge.Roles{
		Data:       []bridge.Kind{KindTick},
		Completion: []bridge.Kind{KindStopped},
	})

	go cron.Run()

	el := pull(t, b, 3*time.Second)
	assert.Equal(t, KindTick, el.Kind)

	firedAt, err := bridge.Arg[time.Time](el, 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), firedAt, 3*time.Second)

	require.NoError(t, cron.Stop(context.Background()))
	assert.NoError(t, end(t, b, time.Second))
}

func TestCronCustomKind(t *testing.T) {
	cron := NewCron(logrus.New())
	require.NoError(t, cron.Add(&config.Cron{Schedule: "* * * * * *", Kind: "beat"}))

	b := bridge.New(cron, bridge.Roles{
		Data:       []bridge.Kind{"beat"},
		Completion: []bridge.Kind{KindStopped},
	})

	go cron.Run()
	defer cron.Stop(context.Background())

	el := pull(t, b, 3*time.Second)
	assert.Equal(t, bridge.Kind("beat"), el.Kind)
}

func TestCronInvalidSchedule(t *testing.T) {
	cron := NewCron(logrus.New())

	assert.Error(t, cron.Add(&config.Cron{Schedule: "not a schedule"}))
}

func TestCronStopTwice(t *testing.T) {
	cron := NewCron(logrus.New())
	b := bridge.New(cron, bridge.Roles{Completion: []bridge.Kind{KindStopped}})

	go cron.Run()

	assert.NoError(t, cron.Stop(context.Background()))
	assert.ErrorIs(t, cron.Stop(context.Background()), ErrAlreadyStopped)
	assert.NoError(t, end(t, b, time.Second))
}
