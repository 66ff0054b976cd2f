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
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

// Format selects how records are written.
type Format int

const (
	FormatTerminal Format = iota
	FormatJSON
	FormatLogfmt
)

// NewHandler returns a handler writing records at or above lvl to wr.
// useColor only applies to the terminal format.
func NewHandler(wr io.Writer, format Format, lvl *slog.LevelVar, useColor bool) slog.Handler {
	switch format {
	case FormatJSON:
		return JSONHandlerWithLevel(wr, lvl)
	case FormatLogfmt:
		return LogfmtHandlerWithLevel(wr, lvl)
	default:
		return NewTerminalHandlerWithLevel(wr, lvl, useColor)
	}
}

type discardHandler struct{}

// DiscardHandler returns a no-op handler
func DiscardHandler() slog.Handler {
	return discardHandler{}
}

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }

// TerminalHandler writes records for humans:
//
//	LEVEL [TIME] MESSAGE key=value key=value ...
//
// Example:
//
//	DEBUG[05-16|20:58:45.000] settled                                  pkg=accumulator now=1,209,600 segments=2
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	lvl      *slog.LevelVar
	useColor bool
	attrs    []slog.Attr
	group    string // dotted prefix of record keys
	// fieldPadding keeps the longest value seen per key, so columns line up
	fieldPadding map[string]int

	buf []byte
}

// NewTerminalHandler returns a terminal handler passing every level.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	var level slog.LevelVar
	level.Set(levelMaxVerbosity)
	return NewTerminalHandlerWithLevel(wr, &level, useColor)
}

// NewTerminalHandlerWithLevel returns a terminal handler passing records at or above lvl.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl *slog.LevelVar, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		wr:           wr,
		lvl:          lvl,
		useColor:     useColor,
		fieldPadding: make(map[string]int),
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := h.format(h.buf, r, h.useColor)
	_, err := h.wr.Write(buf)
	h.buf = buf[:0]
	return err
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *TerminalHandler) clone() *TerminalHandler {
	return &TerminalHandler{
		wr:           h.wr,
		lvl:          h.lvl,
		useColor:     h.useColor,
		attrs:        h.attrs[:len(h.attrs):len(h.attrs)],
		group:        h.group,
		fieldPadding: make(map[string]int),
	}
}

// WithGroup prefixes the keys of later attributes with name and a dot.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.group += name + "."
	return c
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, attr := range attrs {
		c.attrs = append(c.attrs, slog.Attr{Key: h.group + attr.Key, Value: attr.Value})
	}
	return c
}

type leveler struct{ minLevel *slog.LevelVar }

func (l *leveler) Level() slog.Level {
	return l.minLevel.Level()
}

// JSONHandler returns a handler which prints records in JSON format.
func JSONHandler(wr io.Writer) slog.Handler {
	var level slog.LevelVar
	level.Set(levelMaxVerbosity)
	return JSONHandlerWithLevel(wr, &level)
}

// JSONHandlerWithLevel is JSONHandler passing records at or above level.
func JSONHandlerWithLevel(wr io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceAttr(false),
		Level:       &leveler{level},
	})
}

// LogfmtHandler returns a handler which prints records as logfmt key=value pairs.
func LogfmtHandler(wr io.Writer) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceAttr(true),
	})
}

// LogfmtHandlerWithLevel is LogfmtHandler passing records at or above level.
func LogfmtHandlerWithLevel(wr io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceAttr(true),
		Level:       &leveler{level},
	})
}

// replaceAttr shortens the time and level keys, and renders amounts in
// decimal and durations as text, which slog would print as raw integers.
func replaceAttr(logfmt bool) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, attr slog.Attr) slog.Attr {
		switch attr.Key {
		case slog.TimeKey:
			if attr.Value.Kind() == slog.KindTime {
				if logfmt {
					return slog.String("t", attr.Value.Time().Format(timeFormat))
				}
				return slog.Attr{Key: "t", Value: attr.Value}
			}
		case slog.LevelKey:
			if l, ok := attr.Value.Any().(slog.Level); ok {
				return slog.String("lvl", LevelString(l))
			}
		}

		switch v := attr.Value.Any().(type) {
		case time.Time:
			if logfmt {
				attr.Value = slog.StringValue(v.Format(timeFormat))
			}
		case time.Duration:
			attr.Value = slog.StringValue(v.String())
		case *big.Int:
			attr.Value = slog.StringValue(decimalOrNil(v == nil, v.String))
		case *uint256.Int:
			attr.Value = slog.StringValue(decimalOrNil(v == nil, v.Dec))
		case fmt.Stringer:
			isNil := v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil())
			attr.Value = slog.StringValue(decimalOrNil(isNil, v.String))
		}
		return attr
	}
}

func decimalOrNil(isNil bool, str func() string) string {
	if isNil {
		return "<nil>"
	}
	return str()
}
