package executor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/sirupsen/logrus"
)

// Environment variables describing the element a Shell command runs for
const (
	EnvKind   = "PULLSTREAM_KIND"
	EnvArgs   = "PULLSTREAM_ARGS"
	EnvStream = "PULLSTREAM_STREAM"
)

// NewShell creates a new Shell based executor with default
// values set for optional fields in the configuration
func NewShell(logger logrus.FieldLogger, stream string) *Shell {
	return &Shell{
		logger:  logger,
		stream:  stream,
		Timeout: 5,
	}
}

// Shell defines an execution that will run in the
// users defined shell. The element is passed to the command through
// the PULLSTREAM_* environment variables.
//
// Defaults:
// - Logging output is disabled
// - Timeout for commands is 5s
type Shell struct {
	logger logrus.FieldLogger
	stream string

	LogOutput bool   `yaml:"log"`
	Shell     string `yaml:"shell"`
	Command   string `yaml:"command"`
	Timeout   int    `yaml:"timeout"`
}

// getShell determines the shell to use for execution of the specified
// command. This is determined either by user configuration or environment variables.
func (shell *Shell) getShell() string {
	if shell.Shell != "" {
		return shell.Shell
	}

	if s, exists := os.LookupEnv("SHELL"); exists {
		return s
	}
	return "sh"
}

// environ returns the process environment extended with the element
func (shell *Shell) environ(el bridge.Element) ([]string, error) {
	args, err := json.Marshal(el.Args)
	if err != nil {
		return nil, err
	}

	return append(os.Environ(),
		EnvKind+"="+string(el.Kind),
		EnvArgs+"="+string(args),
		EnvStream+"="+shell.stream,
	), nil
}

// Execute runs the command defined by Shell for the provided element.
// ctx is used to propagate any cancellation instructions of the command from the caller
func (shell *Shell) Execute(ctx context.Context, el bridge.Element) error {
	ctx, done := context.WithTimeout(ctx, time.Second*time.Duration(shell.Timeout))
	defer done()

	env, err := shell.environ(el)
	if err != nil {
		return err
	}

	sh := shell.getShell()

	cmd := exec.CommandContext(ctx, sh, "-c", shell.Command)
	cmd.Env = env
	cmd.WaitDelay = time.Second

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || os.IsTimeout(err) {
			return ErrTimeoutExceeded
		}
		return err
	}

	if shell.LogOutput {
		shell.logger.
			WithField("stdout", strings.TrimSpace(string(out))).
			WithField("shell", sh).
			WithField("kind", el.Kind).
			Info("Shell execution output")
	}

	return nil
}
