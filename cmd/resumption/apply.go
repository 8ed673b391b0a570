package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/llm-d-incubation/training-resumption/internal/checkpoint"
	"github.com/llm-d-incubation/training-resumption/internal/config"
	"github.com/llm-d-incubation/training-resumption/internal/logging"
	"github.com/llm-d-incubation/training-resumption/internal/metrics"
)

func applyCmd() *cli.Command {
	var (
		checkpointPath string
		configPath     string
		outputPath     string
		modelID        string
		dryRun         bool
	)

	return &cli.Command{
		Name:  "apply",
		Usage: "Apply the configured run-start callbacks to a checkpoint snapshot",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "checkpoint",
				Aliases:     []string{"c"},
				Usage:       "path to the checkpoint snapshot (JSON)",
				Destination: &checkpointPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"f"},
				Usage:       "path to the resumption config (YAML)",
				Destination: &configPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output path; defaults to rewriting the checkpoint in place",
				Destination: &outputPath,
			},
			&cli.StringFlag{
				Name:        "model-id",
				Aliases:     []string{"m"},
				Usage:       "treat the config as multi-model and select this model's entry, merged over its defaults",
				Destination: &modelID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "run the callbacks but do not write the snapshot back",
				Destination: &dryRun,
			},
		}, logFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx = loggerContext(ctx)
			logger := logging.FromContext(ctx)

			var (
				cfg config.ResumptionConfig
				err error
			)
			if modelID != "" {
				cfg, err = config.LoadForModel(logger, configPath, modelID)
			} else {
				cfg, err = config.Load(configPath)
			}
			if err != nil {
				return err
			}

			snap, err := checkpoint.Load(checkpointPath)
			if err != nil {
				return err
			}

			registry, err := cfg.Build(metrics.New(prometheus.NewRegistry()))
			if err != nil {
				return err
			}
			if registry.Len() == 0 {
				logger.Info("No callbacks configured, nothing to do", "config", configPath)
				return nil
			}

			state := snap.State()
			if err := registry.RunStart(ctx, state); err != nil {
				return err
			}
			snap.Capture(state)

			if dryRun {
				logger.Info("Dry run, snapshot not written", "checkpoint", checkpointPath)
				return nil
			}

			out := outputPath
			if out == "" {
				out = checkpointPath
			}
			if err := snap.Save(out); err != nil {
				return err
			}
			logger.Info("Applied resumption callbacks",
				"checkpoint", out, "runID", snap.RunID, "callbacks", registry.Len())
			return nil
		},
	}
}
