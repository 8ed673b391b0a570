package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/llm-d-incubation/training-resumption/internal/checkpoint"
)

func inspectCmd() *cli.Command {
	var checkpointPath string

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print a summary of a checkpoint snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "checkpoint",
				Aliases:     []string{"c"},
				Usage:       "path to the checkpoint snapshot (JSON)",
				Destination: &checkpointPath,
				Required:    true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			snap, err := checkpoint.Load(checkpointPath)
			if err != nil {
				return err
			}

			fmt.Printf("run id:     %s\n", snap.RunID)
			if !snap.CreatedAt.IsZero() {
				fmt.Printf("created at: %s\n", snap.CreatedAt)
			}

			if snap.Optimizers == nil {
				fmt.Println("optimizers: absent")
			}
			for i, opt := range snap.Optimizers {
				name := opt.Name
				if name == "" {
					name = fmt.Sprintf("optimizer[%d]", i)
				}
				fmt.Printf("%s:\n", name)
				for j, g := range opt.ParamGroups {
					line := fmt.Sprintf("  group[%d]: lr=%g wd=%g", j, g.LearningRate, g.WeightDecay)
					if g.InitialLearningRate != nil {
						line += fmt.Sprintf(" initial_lr=%g", *g.InitialLearningRate)
					}
					fmt.Println(line)
				}
			}
			for i, sched := range snap.Schedulers {
				name := sched.Name
				if name == "" {
					name = fmt.Sprintf("scheduler[%d]", i)
				}
				fmt.Printf("%s: base rates %v\n", name, sched.BaseRates)
			}

			trainable, frozen := 0, 0
			for _, p := range snap.Model.Parameters {
				if p.Trainable {
					trainable++
				} else {
					frozen++
				}
			}
			fmt.Printf("parameters: %d trainable, %d frozen\n", trainable, frozen)
			for _, p := range snap.Model.Parameters {
				if !p.Trainable {
					fmt.Printf("  frozen: %s\n", p.Name)
				}
			}
			return nil
		},
	}
}
