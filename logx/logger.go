// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logx

import (
	"io"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Logger is compatible with the standard library and logrus. It is
// the interface calib and stream accept so neither of them needs to
// import charmbracelet/log directly.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Level mirrors the subset of charmbracelet/log's levels this module
// exposes at its own API boundary.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) charmLevel() charmlog.Level {
	switch l {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// New returns a Logger backed by a charmbracelet/log.Logger writing
// to w, prefixed with prefix (typically a component name such as
// "chipctl" or "stream") and reporting timestamps at the given level.
func New(w io.Writer, prefix string, level Level) Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level.charmLevel(),
	})
	return l
}

// Default returns a Logger writing to os.Stderr at LevelInfo, suitable
// as a zero-configuration fallback for callers that don't need
// per-component prefixes.
func Default() Logger {
	return New(os.Stderr, "lms7core", LevelInfo)
}

// Discard is a Logger that drops everything, for tests and contexts
// that construct a device stack without caring about its log output.
var Discard Logger = New(io.Discard, "", LevelError)
