/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log provides centralized slog-based logging for nashchart.
// Console output goes through charmbracelet/log acting as a slog handler;
// JSON output and the optional rotating file use slog's JSON handler.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	lj "gopkg.in/natefinch/lumberjack.v2"

	"nashchart/internal/version"
)

// Options controls logger initialization.
// Values can be provided directly or via environment variables:
//   - NASH_LOG_LEVEL=debug|info|warn|error
//   - NASH_LOG_FORMAT=console|json
//   - NASH_LOG_FILE=<path> (enables file logging with rotation)
//   - NASH_LOG_SOURCE=true|false (include source)
//
// Defaults: INFO level, console format, no source, stderr.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string
	Output    io.Writer
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   *slog.Logger
)

// L returns the default application logger, initializing from env if needed.
func L() *slog.Logger {
	defaultLoggerMu.RLock()
	l := defaultLogger
	defaultLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	defaultLoggerMu.RLock()
	l = defaultLogger
	defaultLoggerMu.RUnlock()
	return l
}

// Init configures the global logger and sets slog.Default as well.
func Init(opts Options) {
	logger := New(opts)
	defaultLoggerMu.Lock()
	defaultLogger = logger
	defaultLoggerMu.Unlock()
	slog.SetDefault(logger)
}

// New builds a logger from opts without touching the global one.
func New(opts Options) *slog.Logger {
	lvl := parseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	var handlers []slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		handlers = append(handlers, slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	} else {
		handlers = append(handlers, charmlog.NewWithOptions(out, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			ReportCaller:    opts.AddSource,
			Level:           charmLevel(lvl),
		}))
	}
	if strings.TrimSpace(opts.File) != "" {
		w := &lj.Logger{Filename: opts.File, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}
	var h slog.Handler
	if len(handlers) == 1 {
		h = handlers[0]
	} else {
		h = multiHandler(handlers...)
	}
	return slog.New(h).With(
		slog.String("app", "nashchart"),
		slog.String("ver", version.Version),
	)
}

// FromEnv builds Options from environment variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("NASH_LOG_LEVEL", "info"),
		Format:    getenv("NASH_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("NASH_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("NASH_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// Timed logs msg at Info with the elapsed time since start.
func Timed(l *slog.Logger, start time.Time, msg string, attrs ...any) {
	l.Info(msg, append(attrs, slog.Duration("took", time.Since(start).Round(time.Millisecond)))...)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func charmLevel(l slog.Level) charmlog.Level {
	switch {
	case l <= slog.LevelDebug:
		return charmlog.DebugLevel
	case l >= slog.LevelError:
		return charmlog.ErrorLevel
	case l >= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.InfoLevel
	}
}

// multiHandler fans out log records to multiple handlers.
func multiHandler(handlers ...slog.Handler) slog.Handler { return &multi{hs: handlers} }

type multi struct{ hs []slog.Handler }

func (m *multi) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multi) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multi) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithAttrs(attrs)
	}
	return &multi{hs: res}
}

func (m *multi) WithGroup(name string) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithGroup(name)
	}
	return &multi{hs: res}
}
