// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger returns the logger handed to every command. Records
// go to stderr: as text when stderr is a terminal, as JSON lines when it
// is a pipe or file.
//
// level is consulted per record, so --verbose takes effect even though
// flags are parsed after the logger is built. nil means Info.
//
//	logger = logger.With("command", "pack", "output", params.Output)
func NewCommandLogger(level *slog.LevelVar) *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level)
}

func newLogger(w io.Writer, text bool, level *slog.LevelVar) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if level != nil {
		options.Level = level
	}
	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
