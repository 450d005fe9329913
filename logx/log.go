// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package logx is the ambient logging layer used by the encoder runtime
// and the linearbuffersc driver. It follows original_source/src/debug.c's
// level set and its mutex guarding writes, so concurrent callers of one
// Logger never interleave a line, built on top of Go's structured logger
// (log/slog) rather than a hand-rolled fprintf wrapper. The level is not
// process-wide: each Logger holds its own level and its own mutex, and
// SetLevel on one Logger does not affect any other.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level mirrors debug.c's LINEARBUFFERS_DEBUG_LEVEL_* constants.
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelWarning
	LevelNotice
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelSilent:
		return "silent"
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNotice:
		return "notice"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	case LevelNotice, LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelError
	}
}

// ParseLevel accepts the single-letter and full-word spellings debug.c's
// command line parsing recognizes ('e'/"error", 'w'/"warning", 'n'/
// "notice", 'i'/"info", 'd'/"debug"), case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "s", "silent":
		return LevelSilent, nil
	case "e", "error":
		return LevelError, nil
	case "w", "warning":
		return LevelWarning, nil
	case "n", "notice":
		return LevelNotice, nil
	case "i", "info":
		return LevelInfo, nil
	case "d", "debug":
		return LevelDebug, nil
	default:
		return LevelSilent, fmt.Errorf("logx: unknown level %q", s)
	}
}

// Logger is a leveled, mutex-serialized writer built on slog. The zero
// value is not usable; construct one with New.
type Logger struct {
	mu    sync.Mutex
	level Level
	sl    *slog.Logger
}

// New creates a Logger writing to w at the given level. A nil w defaults
// to os.Stderr.
func New(w io.Writer, level Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	// The handler accepts every record; log filters against l.level, so a
	// later SetLevel takes effect without rebuilding the handler.
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{level: level, sl: slog.New(handler)}
}

// SetLevel changes the logger's level; guarded by the same mutex as
// writes so a level change can't race a concurrent log call.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) log(level Level, format string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level > l.level {
		return
	}
	l.sl.Log(nil, level.slogLevel(), fmt.Sprintf(format, args...))
}

// Errorf logs at LevelError.
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args) }

// Warnf logs at LevelWarning.
func (l *Logger) Warnf(format string, args ...any) { l.log(LevelWarning, format, args) }

// Noticef logs at LevelNotice.
func (l *Logger) Noticef(format string, args ...any) { l.log(LevelNotice, format, args) }

// Infof logs at LevelInfo.
func (l *Logger) Infof(format string, args ...any) { l.log(LevelInfo, format, args) }

// Debugf logs at LevelDebug.
func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args) }
