package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/mickyco94/pullstream/emitter"
	"github.com/mickyco94/pullstream/internal/config"
	filewatcher "github.com/radovskyb/watcher"
	"github.com/sirupsen/logrus"
)

// DefaultPollingInterval is used when Run is given a non-positive interval
const DefaultPollingInterval = 100 * time.Millisecond

var operationKinds = map[filewatcher.Op]bridge.Kind{
	filewatcher.Create: KindCreate,
	filewatcher.Write:  KindWrite,
	filewatcher.Remove: KindRemove,
	filewatcher.Rename: KindRename,
	filewatcher.Chmod:  KindChmod,
	filewatcher.Move:   KindMove,
}

// NewFile constructs a polling file watcher
func NewFile(logger logrus.FieldLogger) *File {
	watcher := filewatcher.New()
	watcher.IgnoreHiddenFiles(false)

	return &File{
		Emitter: emitter.New(emitter.WithLogger(logger)),
		close:   make(chan struct{}),
		done:    make(chan struct{}),

		logger:  logger,
		watcher: watcher,
	}
}

type fileEntry struct {
	//path is the absolute path of the file/directory being watched
	path string
	//dir is set to true if the specified entry is a watch for a directory
	dir bool
	//recursive extends a directory watch to all descendants
	recursive bool
}

// File is a Source that polls the file system. Each change to a watched
// path fires the kind of its operation with the arguments (path, oldPath).
type File struct {
	*emitter.Emitter

	runningMu sync.Mutex
	isRunning bool
	stopped   bool
	close     chan struct{}
	done      chan struct{}

	logger logrus.FieldLogger

	entries []fileEntry
	watcher *filewatcher.Watcher
}

// Add starts watching the path of the provided config.
// An error is returned if the path does not exist
func (file *File) Add(cfg *config.File) error {
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if cfg.Recursive {
		err = file.watcher.AddRecursive(path)
	} else {
		err = file.watcher.Add(path)
	}
	if err != nil {
		return err
	}

	file.entries = append(file.entries, fileEntry{
		path:      path,
		dir:       info.IsDir(),
		recursive: cfg.Recursive,
	})

	return nil
}

func (entry fileEntry) matches(event filewatcher.Event) bool {
	if event.Path == entry.path {
		return true
	}

	if event.OldPath != "" && event.OldPath == entry.path {
		return true
	}

	if entry.dir && entry.path == filepath.Dir(event.Path) {
		return true
	}

	if entry.recursive && strings.HasPrefix(event.Path, entry.path+string(filepath.Separator)) {
		return true
	}

	return false
}

func (file *File) dispatch(event filewatcher.Event) {
	kind, ok := operationKinds[event.Op]
	if !ok {
		return
	}

	for _, entry := range file.entries {
		if entry.matches(event) {
			file.logger.
				WithField("kind", kind).
				WithField("path", event.Path).
				Debug("File event")
			file.Emit(kind, event.Path, event.OldPath)
			return
		}
	}
}

// Run polls the watched paths every pollingInterval until Stop is called.
// Run blocks, so the caller decides which goroutine it runs on.
func (file *File) Run(pollingInterval time.Duration) error {
	file.runningMu.Lock()

	if file.stopped {
		file.runningMu.Unlock()
		return ErrAlreadyStopped
	}
	if file.isRunning {
		file.runningMu.Unlock()
		return ErrAlreadyRunning
	}

	if pollingInterval <= 0 {
		pollingInterval = DefaultPollingInterval
	}

	go func() {
		defer close(file.done)

		for {
			select {
			case <-file.close:
				return
			case <-file.watcher.Closed:
				return
			case event := <-file.watcher.Event:
				file.dispatch(event)
			case err := <-file.watcher.Error:
				file.logger.WithError(err).Warn("File watcher error")
				file.Emit(KindError, err)
			}
		}
	}()

	file.isRunning = true
	file.runningMu.Unlock()

	return file.watcher.Start(pollingInterval)
}

// Stop shuts down the watcher, waits for the dispatch loop to exit before
// the provided context is done and then fires KindStopped. Stopping a
// watcher that never ran only fires KindStopped and prevents it from running.
func (file *File) Stop(ctx context.Context) error {
	file.runningMu.Lock()
	defer file.runningMu.Unlock()

	if file.stopped {
		return ErrAlreadyStopped
	}
	file.stopped = true

	if !file.isRunning {
		file.Emit(KindStopped)
		return nil
	}
	file.isRunning = false

	// Start may not have been reached yet by Run
	started := make(chan struct{})
	go func() {
		file.watcher.Wait()
		close(started)
	}()

	select {
	case <-ctx.Done():
		close(file.close)
		return ctx.Err()
	case <-started:
	}

	file.watcher.Close()
	close(file.close)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-file.done:
	}

	file.Emit(KindStopped)
	return nil
}

var _ bridge.Source = (*File)(nil)
