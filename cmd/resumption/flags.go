package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/llm-d-incubation/training-resumption/internal/logging"
)

var (
	logLevel string
	logDev   bool
)

// logFlags returns the logging flags shared by all commands.
func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Value:       "info",
			Usage:       "log verbosity: info, debug, or trace",
			Destination: &logLevel,
		},
		&cli.BoolFlag{
			Name:        "log-dev",
			Usage:       "use the console log encoder instead of JSON",
			Destination: &logDev,
		},
	}
}

// loggerContext attaches a logger built from the log flags to ctx.
func loggerContext(ctx context.Context) context.Context {
	return logging.IntoContext(ctx, logging.NewLogger(logLevel, logDev))
}
