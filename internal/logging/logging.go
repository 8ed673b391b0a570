/*
Copyright 2025 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging provides the shared logr setup for the toolkit.
//
// All components log through logr.Logger values carried in the context.
// Verbosity follows the usual convention: V(0) for operational messages,
// V(DEBUG) for per-item detail, V(TRACE) for very chatty output.
package logging

import (
	"context"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels used with logr.Logger.V().
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// NewLogger builds a zap-backed logr.Logger.
//
// level is one of "info", "debug", or "trace" (case-insensitive); anything
// else falls back to "info". When dev is true the console encoder is used
// instead of JSON.
func NewLogger(level string, dev bool) logr.Logger {
	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	// logr verbosity v maps to zap level -v.
	switch strings.ToLower(level) {
	case "trace":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-TRACE))
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-DEBUG))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	zl, err := cfg.Build()
	if err != nil {
		// Config is fully static at this point; Build only fails on
		// invalid output paths, which the defaults never produce.
		panic(err)
	}
	return zapr.NewLogger(zl)
}

// NewTestLogger returns a development logger at trace verbosity writing to
// stderr, for use in test suites.
func NewTestLogger() logr.Logger {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.Level(-TRACE))
	return zapr.NewLogger(zap.New(core))
}

// IntoContext returns a copy of ctx carrying logger.
func IntoContext(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// FromContext retrieves the logger stored in ctx, or a discarding logger if
// none was stored.
func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}
