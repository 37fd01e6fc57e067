package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mickyco94/pullstream/internal/config"
	"github.com/mickyco94/pullstream/internal/runner"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:     "config",
	Aliases:  []string{"c"},
	Usage:    "path to the stream template",
	Required: true,
}

func newLogger(debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pullstream",
		Usage: "pull the occurrences of event sources into ordered streams",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run every stream of the template until interrupted",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "enable debug logging",
					},
				},
				Action: func(c *cli.Context) error {
					logger := newLogger(c.Bool("debug"))
					return runner.Run(c.Context, c.String("config"), logger)
				},
			},
			{
				Name:  "validate",
				Usage: "check the template without running it",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d streams OK\n", len(cfg.Streams))
					return nil
				},
			},
		},
	}
}

func main() {
	if err := newApp().RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
