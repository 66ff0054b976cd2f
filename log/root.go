// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

const errorKey = "LOG_ERROR"

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// The following functions bypass the exported logger methods (logger.Debug,
// etc.) to keep the call depth the same for all paths to logger.Write so
// runtime.Caller(2) always refers to the call site in client code.

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) {
	Root().Write(LevelTrace, msg, ctx...)
}

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) {
	Root().Write(slog.LevelDebug, msg, ctx...)
}

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) {
	Root().Write(slog.LevelInfo, msg, ctx...)
}

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) {
	Root().Write(slog.LevelWarn, msg, ctx...)
}

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) {
	Root().Write(slog.LevelError, msg, ctx...)
}

// Crit is a convenient alias for Root().Crit
func Crit(msg string, ctx ...any) {
	Root().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}

// New returns a new logger with the given context.
// New is a convenient alias for Root().New
func New(ctx ...any) Logger {
	return Root().With(ctx...)
}

// WithContext returns a logger bound to the given context that always writes
// through the current root logger, so package level loggers follow SetDefault.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

type contextLogger struct {
	ctx []any
}

func (l *contextLogger) current() Logger {
	return Root().With(l.ctx...)
}

func (l *contextLogger) With(ctx ...any) Logger {
	return &contextLogger{ctx: append(append([]any(nil), l.ctx...), ctx...)}
}

func (l *contextLogger) New(ctx ...any) Logger {
	return l.With(ctx...)
}

func (l *contextLogger) Log(level slog.Level, msg string, ctx ...any) {
	l.current().Write(level, msg, ctx...)
}

func (l *contextLogger) Trace(msg string, ctx ...any) {
	l.current().Write(LevelTrace, msg, ctx...)
}

func (l *contextLogger) Debug(msg string, ctx ...any) {
	l.current().Write(slog.LevelDebug, msg, ctx...)
}

func (l *contextLogger) Info(msg string, ctx ...any) {
	l.current().Write(slog.LevelInfo, msg, ctx...)
}

func (l *contextLogger) Warn(msg string, ctx ...any) {
	l.current().Write(slog.LevelWarn, msg, ctx...)
}

func (l *contextLogger) Error(msg string, ctx ...any) {
	l.current().Write(slog.LevelError, msg, ctx...)
}

func (l *contextLogger) Crit(msg string, ctx ...any) {
	l.current().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}

func (l *contextLogger) Write(level slog.Level, msg string, attrs ...any) {
	l.current().Write(level, msg, attrs...)
}

func (l *contextLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return Root().Enabled(ctx, level)
}

func (l *contextLogger) Handler() slog.Handler {
	return l.current().Handler()
}
