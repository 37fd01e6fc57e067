package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/mickyco94/pullstream/internal/config"
	"github.com/mickyco94/pullstream/internal/executor"
	"github.com/mickyco94/pullstream/internal/watcher"
	"github.com/sirupsen/logrus"
)

var shutdownDelay = time.Second * 5

// source is a watcher as seen by the runner
type source interface {
	bridge.Source
	Stop(context.Context) error
}

// stream is the runtime form of a config.StreamSpec: a source, the bridge
// pulling from it and the executor run for every element
type stream struct {
	name     string
	source   source
	run      func() error
	roles    bridge.Roles
	executor executor.Executor
	bridge   *bridge.Bridge
}

type Runner struct {
	logger logrus.FieldLogger

	pool    *executor.Pool
	streams []*stream
}

// New constructs a Runner for every stream of cfg
func New(logger logrus.FieldLogger, cfg *config.Raw) (*Runner, error) {
	runner := &Runner{
		logger: logger,
		pool:   executor.NewPool(logger, executor.DefaultPoolSize),
	}

	for _, spec := range cfg.Streams {
		s, err := runner.construct(spec)
		if err != nil {
			return nil, fmt.Errorf("stream %q: %w", spec.Name, err)
		}
		runner.streams = append(runner.streams, s)
	}

	return runner, nil
}

// Run loads the config at templatePath and runs its streams until SIGINT is
// received or ctx is done
func Run(ctx context.Context, templatePath string, logger logrus.FieldLogger) error {
	cfg, err := config.Load(templatePath)
	if err != nil {
		return err
	}

	runner, err := New(logger, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	return runner.Run(ctx)
}

// Run starts every stream and blocks until ctx is done, a source fails
// unexpectedly or every stream has ended, then shuts everything down.
func (runner *Runner) Run(ctx context.Context) error {
	runner.pool.Start()

	consumeCtx, cancelConsume := context.WithCancel(context.Background())
	defer cancelConsume()

	consumers := &sync.WaitGroup{}
	failed := make(chan error, len(runner.streams))

	for _, s := range runner.streams {
		s.bridge = bridge.New(s.source, s.roles,
			bridge.WithLogger(runner.logger),
			bridge.WithName(s.name))

		consumers.Add(1)
		go func() {
			defer consumers.Done()
			runner.consume(consumeCtx, s)
		}()

		go func() {
			err := s.run()
			if err != nil && !errors.Is(err, watcher.ErrAlreadyStopped) {
				failed <- fmt.Errorf("stream %q: %w", s.name, err)
			}
		}()
	}

	ended := make(chan struct{})
	go func() {
		consumers.Wait()
		close(ended)
	}()

	runner.logger.WithField("streams", len(runner.streams)).Info("Streams started")

	var err error
	select {
	case <-ctx.Done():
		runner.logger.Debug("Shutting down")
	case <-ended:
		runner.logger.Info("Every stream ended, shutting down")
	case err = <-failed:
		runner.logger.WithError(err).Error("Source failed unexpectedly, shutting down")
	}

	runner.shutdown(consumers, cancelConsume)

	return err
}

// consume pulls every element of the stream's bridge and hands it to the pool
func (runner *Runner) consume(ctx context.Context, s *stream) {
	logger := runner.logger.WithField("stream", s.name)

	for el, err := range s.bridge.All(ctx) {
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("Stream failed")
			}
			return
		}

		err := runner.pool.Enqueue(executor.Job{
			Stream:   s.name,
			Element:  el,
			Executor: s.executor,
		})
		if err != nil {
			logger.WithError(err).Warn("Element dropped")
			return
		}
	}

	logger.Debug("Stream completed")
}

func (runner *Runner) shutdown(consumers *sync.WaitGroup, cancelConsume context.CancelFunc) {
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownDelay)
	defer done()

	wg := &sync.WaitGroup{}
	for _, s := range runner.streams {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := s.source.Stop(shutdownCtx)
			if err != nil && !errors.Is(err, watcher.ErrAlreadyStopped) {
				runner.logger.WithField("stream", s.name).WithError(err).Error("Source failed to shutdown")
			}
		}()
	}
	wg.Wait()

	// streams that do not complete on KindStopped are closed from here
	cancelConsume()
	for _, s := range runner.streams {
		s.bridge.Close()
	}
	consumers.Wait()

	if err := runner.pool.Stop(shutdownCtx); err != nil {
		runner.logger.WithError(err).Error("Executors failed to shutdown")
	}
}

// construct builds the source and executor of a stream from its specification
func (runner *Runner) construct(spec config.StreamSpec) (*stream, error) {
	s := &stream{
		name:  spec.Name,
		roles: spec.Roles(),
	}

	logger := runner.logger.WithField("stream", spec.Name)

	switch config.SourceType(spec.Source.Type) {
	case config.CronKey:
		cfg := &config.Cron{}
		if err := spec.Source.Decode(cfg); err != nil {
			return nil, err
		}
		cron := watcher.NewCron(logger)
		if err := cron.Add(cfg); err != nil {
			return nil, err
		}
		s.source = cron
		s.run = func() error {
			cron.Run()
			return nil
		}
	case config.FileKey:
		cfg := &config.File{}
		if err := spec.Source.Decode(cfg); err != nil {
			return nil, err
		}
		file := watcher.NewFile(logger)
		if err := file.Add(cfg); err != nil {
			return nil, err
		}
		s.source = file
		s.run = func() error {
			return file.Run(cfg.Interval)
		}
	case config.NotifyKey:
		cfg := &config.Notify{}
		if err := spec.Source.Decode(cfg); err != nil {
			return nil, err
		}
		notify, err := watcher.NewNotify(logger)
		if err != nil {
			return nil, err
		}
		if err := notify.Add(cfg); err != nil {
			return nil, err
		}
		s.source = notify
		s.run = notify.Run
	case config.ProcessKey:
		cfg := &config.Process{}
		if err := spec.Source.Decode(cfg); err != nil {
			return nil, err
		}
		process := watcher.NewProcess(logger)
		process.Add(cfg)
		s.source = process
		s.run = process.Run
	default:
		return nil, fmt.Errorf("source %q: %w", spec.Source.Type, config.ErrUnknownType)
	}

	switch config.ExecutorType(spec.Execute.Type) {
	case config.ShellKey:
		shell := executor.NewShell(logger, spec.Name)
		if err := spec.Execute.Decode(shell); err != nil {
			return nil, err
		}
		s.executor = shell
	case config.HttpKey:
		http := executor.NewHttp(logger)
		if err := spec.Execute.Decode(http); err != nil {
			return nil, err
		}
		s.executor = http
	case config.LogKey:
		log := executor.NewLog(logger)
		if err := spec.Execute.Decode(log); err != nil {
			return nil, err
		}
		s.executor = log
	default:
		return nil, fmt.Errorf("executor %q: %w", spec.Execute.Type, config.ErrUnknownType)
	}

	return s, nil
}
