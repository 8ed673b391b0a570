package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/llm-d-incubation/training-resumption/internal/fixtures"
	"github.com/llm-d-incubation/training-resumption/internal/logging"
)

func fixturesCmd() *cli.Command {
	return &cli.Command{
		Name:  "fixtures",
		Usage: "Generate tiny fine-tuning datasets for testing dataset converters",
		Commands: []*cli.Command{
			ftFixtureCmd(),
			chatFixtureCmd(),
		},
	}
}

func ftFixtureCmd() *cli.Command {
	var (
		path string
		opts fixtures.TinyDatasetOptions
		size int
	)

	return &cli.Command{
		Name:  "ft",
		Usage: "Write a tiny prompt/response JSONL dataset",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "path",
				Aliases:     []string{"p"},
				Usage:       "output path (must end in .jsonl)",
				Destination: &path,
				Required:    true,
			},
			&cli.IntFlag{Name: "size", Value: 4, Usage: "number of well-formed samples", Destination: &size},
			&cli.BoolFlag{Name: "bad-data", Usage: "append empty prompt/response samples", Destination: &opts.AddBadDataDropped},
			&cli.BoolFlag{Name: "invalid-prompt", Usage: "append a null-prompt sample", Destination: &opts.AddInvalidPromptType},
			&cli.BoolFlag{Name: "invalid-response", Usage: "append a null-response sample", Destination: &opts.AddInvalidResponseType},
			&cli.BoolFlag{Name: "extra-keys", Usage: "append a sample with an extra key", Destination: &opts.AddTooManyExampleKeys},
			&cli.BoolFlag{Name: "token-only", Usage: "append token-only prompt/response samples", Destination: &opts.AddJustBOSEOSPad},
			&cli.BoolFlag{Name: "unknown-type", Usage: "replace all samples with an unknown shape", Destination: &opts.AddUnknownExampleType},
			&cli.StringFlag{Name: "pad-token", Usage: "pad token for token-dependent samples", Destination: &opts.PadToken},
			&cli.StringFlag{Name: "start-token", Usage: "start token for token-dependent samples", Destination: &opts.StartToken},
			&cli.StringFlag{Name: "end-token", Usage: "end token for token-dependent samples", Destination: &opts.EndToken},
		}, logFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx = loggerContext(ctx)
			opts.Size = int(size)
			n, err := fixtures.WriteTinyDataset(path, opts)
			if err != nil {
				return err
			}
			logging.FromContext(ctx).Info("Wrote fixture dataset",
				"path", path, "format", fixtures.FormatPromptResponse, "samples", n)
			return nil
		},
	}
}

func chatFixtureCmd() *cli.Command {
	var (
		path string
		opts fixtures.ConversationDatasetOptions
		size int
	)

	return &cli.Command{
		Name:  "chat",
		Usage: "Write a tiny multi-turn chat JSONL dataset",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "path",
				Aliases:     []string{"p"},
				Usage:       "output path (must end in .jsonl)",
				Destination: &path,
				Required:    true,
			},
			&cli.IntFlag{Name: "size", Value: 4, Usage: "number of well-formed conversations", Destination: &size},
			&cli.BoolFlag{Name: "invalid-last-message", Usage: "append a conversation ending on a system message", Destination: &opts.AddInvalidLastChatMessage},
			&cli.BoolFlag{Name: "extra-message-keys", Usage: "append a conversation with an extra message key", Destination: &opts.AddInvalidMessageKeyQuantity},
			&cli.BoolFlag{Name: "invalid-role", Usage: "append a conversation with an unknown role", Destination: &opts.AddInvalidRole},
			&cli.BoolFlag{Name: "invalid-content", Usage: "append a conversation with null content", Destination: &opts.AddInvalidContentType},
			&cli.BoolFlag{Name: "not-alternating", Usage: "append a conversation with consecutive assistant turns", Destination: &opts.AddNotAlternatingRoles},
			&cli.BoolFlag{Name: "conversations-format", Usage: "write the legacy conversations format instead of messages", Destination: &opts.AsConversations},
		}, logFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx = loggerContext(ctx)
			opts.Size = int(size)
			n, err := fixtures.WriteConversationDataset(path, opts)
			if err != nil {
				return err
			}
			format := fixtures.FormatMessages
			if opts.AsConversations {
				format = fixtures.FormatConversations
			}
			logging.FromContext(ctx).Info("Wrote fixture dataset",
				"path", path, "format", format, "samples", n)
			return nil
		},
	}
}
