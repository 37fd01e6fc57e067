package executor

import (
	"context"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/sirupsen/logrus"
)

// Log is an Executor that writes every element to the logger
type Log struct {
	logger logrus.FieldLogger

	Message string `yaml:"message"`
	Level   string `yaml:"level"`
}

// NewLog creates a Log executor that logs at info level
func NewLog(logger logrus.FieldLogger) *Log {
	return &Log{
		logger:  logger,
		Message: "Element received",
		Level:   "info",
	}
}

func (l *Log) Execute(ctx context.Context, el bridge.Element) error {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return err
	}

	l.logger.
		WithField("kind", el.Kind).
		WithField("args", el.Args).
		Log(level, l.Message)

	return nil
}
