package watcher

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mickyco94/pullstream/bridge"
	"github.com/mickyco94/pullstream/emitter"
	"github.com/mickyco94/pullstream/internal/config"
	"github.com/sirupsen/logrus"
)

var notifyKinds = []struct {
	op   fsnotify.Op
	kind bridge.Kind
}{
	{fsnotify.Create, KindCreate},
	{fsnotify.Write, KindWrite},
	{fsnotify.Remove, KindRemove},
	{fsnotify.Rename, KindRename},
	{fsnotify.Chmod, KindChmod},
}

// Notify is a Source backed by the OS file notification API. Each event
// fires the kind of every operation it carries with the argument (path).
// Unlike File it does not poll, but directories are not watched recursively.
type Notify struct {
	*emitter.Emitter

	logger  logrus.FieldLogger
	watcher *fsnotify.Watcher

	runningMu sync.Mutex
	isRunning bool
	stopped   bool
	stopCh    chan struct{}
	done      chan struct{}
}

// NewNotify constructs a notification based file watcher
func NewNotify(logger logrus.FieldLogger) (*Notify, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Notify{
		Emitter: emitter.New(emitter.WithLogger(logger)),
		logger:  logger,
		watcher: watcher,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Add starts watching the path of the provided config
func (n *Notify) Add(cfg *config.Notify) error {
	return n.watcher.Add(cfg.Path)
}

// Run dispatches notifications until Stop is called
func (n *Notify) Run() error {
	n.runningMu.Lock()
	if n.stopped {
		n.runningMu.Unlock()
		return ErrAlreadyStopped
	}
	if n.isRunning {
		n.runningMu.Unlock()
		return ErrAlreadyRunning
	}
	n.isRunning = true
	n.runningMu.Unlock()

	defer close(n.done)

	for {
		select {
		case <-n.stopCh:
			return nil

		case event, ok := <-n.watcher.Events:
			if !ok {
				return nil
			}
			n.dispatch(event)

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return nil
			}
			n.logger.WithError(err).Warn("Notify watcher error")
			n.Emit(KindError, err)
		}
	}
}

func (n *Notify) dispatch(event fsnotify.Event) {
	for _, k := range notifyKinds {
		if !event.Has(k.op) {
			continue
		}
		n.logger.
			WithField("kind", k.kind).
			WithField("path", event.Name).
			Debug("Notify event")
		n.Emit(k.kind, event.Name)
	}
}

// Stop closes the underlying watcher, waits for Run to return before the
// provided context is done and fires KindStopped.
func (n *Notify) Stop(ctx context.Context) error {
	n.runningMu.Lock()
	defer n.runningMu.Unlock()

	if n.stopped {
		return ErrAlreadyStopped
	}
	n.stopped = true

	if !n.isRunning {
		n.watcher.Close()
		n.Emit(KindStopped)
		return nil
	}
	n.isRunning = false

	close(n.stopCh)

	select {
	case <-ctx.Done():
		n.watcher.Close()
		return ctx.Err()
	case <-n.done:
	}

	if err := n.watcher.Close(); err != nil {
		n.logger.WithError(err).Warn("Failed to close notify watcher")
	}

	n.Emit(KindStopped)
	return nil
}

var _ bridge.Source = (*Notify)(nil)
