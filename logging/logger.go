// Copyright 2024 go-dataspace
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging provides logging utilities.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

type contextKeyType string

const contextKey contextKeyType = "logger"

// ParseLevel converts one of "debug", "info", "warn" or "error" into a slog level.
// If the requested level doesn't exist, it panics.
func ParseLevel(requestedLevel string) slog.Level {
	switch requestedLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic("unknown log level")
	}
}

// New will initialise a new structured logger, logging at the desired level.
// If humanReadable is set, it will use the coloured tint handler on stderr,
// if not, it will use JSON on stdout.
func New(requestedLevel string, humanReadable bool) *slog.Logger {
	if humanReadable {
		return newWithWriter(os.Stderr, requestedLevel, true)
	}
	return newWithWriter(os.Stdout, requestedLevel, false)
}

func newWithWriter(w io.Writer, requestedLevel string, humanReadable bool) *slog.Logger {
	level := ParseLevel(requestedLevel)
	if humanReadable {
		return slog.New(tint.NewHandler(w, &tint.Options{
			AddSource:  true,
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
}

// Inject stores the logger in the context.
func Inject(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// Extract returns the logger stored in the context, or the default logger if there is none.
func Extract(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(contextKey).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// InjectLabels adds the labels to the logger in the context, and returns both the new
// context and the new logger.
func InjectLabels(ctx context.Context, labels ...any) (context.Context, *slog.Logger) {
	logger := Extract(ctx).With(labels...)
	return Inject(ctx, logger), logger
}
