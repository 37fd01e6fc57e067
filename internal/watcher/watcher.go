// Package watcher contains the Sources the daemon can bridge: polling and
// inotify file watchers, cron schedules and the process table.
//
// Every watcher embeds an emitter.Emitter, fires its occurrences from its
// own goroutine and fires KindStopped once it has been stopped.
package watcher

import (
	"errors"

	"github.com/mickyco94/pullstream/bridge"
)

var (
	ErrAlreadyRunning = errors.New("Already running")
	ErrAlreadyStopped = errors.New("Already stopped")
)

const (
	KindCreate bridge.Kind = "create"
	KindWrite  bridge.Kind = "write"
	KindRemove bridge.Kind = "remove"
	KindRename bridge.Kind = "rename"
	KindChmod  bridge.Kind = "chmod"
	KindMove   bridge.Kind = "move"

	KindTick bridge.Kind = "tick"

	KindOpen  bridge.Kind = "open"
	KindClose bridge.Kind = "close"

	// KindError carries the error reported by the underlying watcher.
	KindError bridge.Kind = "error"
	// KindStopped fires once, after the watcher has been stopped.
	KindStopped bridge.Kind = "stopped"
)
