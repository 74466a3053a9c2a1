// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package hlog is a small leveled logger, rebuilt in the call shape of
// github.com/saferwall/pe/log (NewStdLogger/NewFilter/FilterLevel/Helper)
// since that subpackage is not part of the retrieved reference pack.
package hlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level identifies a log severity.
type Level int

// Supported levels, lowest to highest severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal leveled logging interface consumed by Helper.
type Logger interface {
	Log(level Level, msg string)
}

// stdLogger writes to an underlying *log.Logger, unfiltered.
type stdLogger struct {
	l *log.Logger
}

// NewStdLogger returns a Logger that writes to w, one line per record.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags)}
}

func (s *stdLogger) Log(level Level, msg string) {
	s.l.Printf("[%s] %s", level, msg)
}

// filter wraps a Logger, dropping records below minLevel.
type filter struct {
	next     Logger
	minLevel Level
}

// Option configures a filter.
type Option func(*filter)

// FilterLevel sets the minimum level a filtered Logger will forward.
func FilterLevel(level Level) Option {
	return func(f *filter) { f.minLevel = level }
}

// NewFilter wraps logger with the given options applied.
func NewFilter(logger Logger, opts ...Option) Logger {
	f := &filter{next: logger, minLevel: LevelInfo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, msg string) {
	if level < f.minLevel {
		return
	}
	f.next.Log(level, msg)
}

// Helper adds printf-style convenience methods over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	if logger == nil {
		logger = NewStdLogger(os.Stderr)
	}
	return &Helper{logger: logger}
}

// Debugf logs a formatted debug-level record.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.logger.Log(LevelDebug, fmt.Sprintf(format, args...))
}

// Infof logs a formatted info-level record.
func (h *Helper) Infof(format string, args ...interface{}) {
	h.logger.Log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warn-level record.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.logger.Log(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error-level record.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.logger.Log(LevelError, fmt.Sprintf(format, args...))
}
