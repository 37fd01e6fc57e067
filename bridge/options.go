package bridge

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for lifecycle diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithName attaches a name to every log line of the Bridge.
func WithName(name string) Option {
	return func(b *Bridge) {
		b.name = name
	}
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
