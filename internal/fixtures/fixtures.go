// Package fixtures synthesizes small fine-tuning datasets in JSONL form,
// for exercising dataset-conversion utilities. Two shapes are supported:
// prompt/response pairs and multi-turn chat conversations (the "messages"
// format, optionally converted to the legacy "conversations" format).
//
// Every option that injects malformed samples appends them after the
// well-formed ones, so downstream validation code sees both.
package fixtures

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/llm-d-incubation/training-resumption/internal/metrics"
)

// Dataset format labels, used for metrics.
const (
	FormatPromptResponse = "prompt_response"
	FormatMessages       = "messages"
	FormatConversations  = "conversations"
)

var (
	// ErrNotJSONL is returned when the dataset path does not end in .jsonl.
	ErrNotJSONL = errors.New("fixtures: dataset path must end in .jsonl")

	// ErrTokensRequired is returned when a token-dependent option is set
	// without the tokens it needs.
	ErrTokensRequired = errors.New("fixtures: pad, start, and end tokens must be set")
)

// Generator writes fixture datasets, optionally recording written sample
// counts to a metrics sink.
type Generator struct {
	metrics *metrics.Metrics
}

// NewGenerator creates a generator. m may be nil.
func NewGenerator(m *metrics.Metrics) *Generator {
	return &Generator{metrics: m}
}

// TinyDatasetOptions controls WriteTinyDataset.
type TinyDatasetOptions struct {
	// Size is the number of well-formed samples. 0 writes only the samples
	// injected by the Add options.
	Size int

	// AddBadDataDropped appends samples with empty prompt and empty
	// response. Requires PadToken.
	AddBadDataDropped bool

	// AddInvalidPromptType appends a sample whose prompt is null.
	AddInvalidPromptType bool

	// AddInvalidResponseType appends a sample whose response is null.
	AddInvalidResponseType bool

	// AddTooManyExampleKeys appends a sample carrying an extra key.
	AddTooManyExampleKeys bool

	// AddJustBOSEOSPad appends samples whose prompt or response is only a
	// start, end, or pad token. Requires PadToken, StartToken, EndToken.
	AddJustBOSEOSPad bool

	// AddUnknownExampleType replaces all samples with one of an unknown
	// shape.
	AddUnknownExampleType bool

	PadToken   string
	StartToken string
	EndToken   string
}

// WriteTinyDataset writes a tiny prompt/response JSONL dataset to path and
// returns the number of samples written.
func (g *Generator) WriteTinyDataset(path string, opts TinyDatasetOptions) (int, error) {
	good := map[string]any{"prompt": "hello", "response": "goodbye"}
	samples := make([]any, 0, opts.Size+8)
	for i := 0; i < opts.Size; i++ {
		samples = append(samples, good)
	}

	if opts.AddBadDataDropped {
		if opts.PadToken == "" {
			return 0, fmt.Errorf("%w for bad-data samples", ErrTokensRequired)
		}
		samples = append(samples,
			map[string]any{"prompt": "", "response": "goodbye"},
			map[string]any{"prompt": "hello", "response": ""},
		)
	}
	if opts.AddInvalidPromptType {
		samples = append(samples, map[string]any{"prompt": nil, "response": "goodbye"})
	}
	if opts.AddInvalidResponseType {
		samples = append(samples, map[string]any{"prompt": "hello", "response": nil})
	}
	if opts.AddTooManyExampleKeys {
		samples = append(samples, map[string]any{
			"prompt":     "hello",
			"response":   "goodbye",
			"completion": "bar",
		})
	}
	if opts.AddJustBOSEOSPad {
		if opts.PadToken == "" || opts.StartToken == "" || opts.EndToken == "" {
			return 0, fmt.Errorf("%w for token-only samples", ErrTokensRequired)
		}
		samples = append(samples,
			map[string]any{"prompt": opts.StartToken, "response": "goodbye"},
			map[string]any{"prompt": "hello", "response": opts.StartToken},
			map[string]any{"prompt": opts.EndToken, "response": "goodbye"},
			map[string]any{"prompt": "hello", "response": opts.EndToken},
			map[string]any{"prompt": opts.PadToken, "response": "goodbye"},
		)
	}
	if opts.AddUnknownExampleType {
		samples = []any{map[string]any{"foo": "yee", "bar": "haw"}}
	}

	if err := writeJSONL(path, samples); err != nil {
		return 0, err
	}
	g.metrics.RecordFixtureSamples(FormatPromptResponse, len(samples))
	return len(samples), nil
}

// WriteTinyDataset writes a tiny prompt/response dataset without metrics.
func WriteTinyDataset(path string, opts TinyDatasetOptions) (int, error) {
	return NewGenerator(nil).WriteTinyDataset(path, opts)
}

func writeJSONL(path string, samples []any) error {
	if filepath.Ext(path) != ".jsonl" {
		return fmt.Errorf("%w: %s", ErrNotJSONL, path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("fixtures: creating %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fixtures: creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, sample := range samples {
		line, err := json.Marshal(sample)
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("fixtures: encoding sample: %w", err)
		}
		if _, err := w.Write(line); err != nil {
			_ = f.Close()
			return fmt.Errorf("fixtures: writing %s: %w", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			_ = f.Close()
			return fmt.Errorf("fixtures: writing %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("fixtures: flushing %s: %w", path, err)
	}
	return f.Close()
}
