// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package log configures the process-wide slog logger. Diagnostics go to
// stderr; user-facing progress lines are written by the commands directly.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvLogFormat selects JSON lines when set to "json"; text otherwise.
	EnvLogFormat = "DARUS_LOG_FORMAT"

	// EnvLogTime forces UTC timestamps when set to "utc".
	EnvLogTime = "DARUS_LOG_TIME"
)

// PrepareLogging installs the default logger writing to w. Verbose enables
// debug records.
func PrepareLogging(w io.Writer, verbose bool) {
	slog.SetDefault(slog.New(NewHandler(w, verbose)))
}

// NewHandler returns a text or JSON handler for w depending on
// $DARUS_LOG_FORMAT.
func NewHandler(w io.Writer, verbose bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       levelFromVerbose(verbose),
		ReplaceAttr: replaceAttr(),
	}
	if strings.EqualFold(os.Getenv(EnvLogFormat), "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func levelFromVerbose(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func replaceAttr() func(groups []string, a slog.Attr) slog.Attr {
	if !strings.EqualFold(os.Getenv(EnvLogTime), "utc") {
		return nil
	}
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey && len(groups) == 0 {
			return slog.Time(slog.TimeKey, a.Value.Time().UTC())
		}
		return a
	}
}
