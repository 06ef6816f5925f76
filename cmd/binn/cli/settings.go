// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/bureau-foundation/binn/lib/config"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Settings carries the global flags shared by every command: the
// configuration file and verbosity. It is a [FlagBinder], so embedding
// it in the root command's params struct registers --config and
// --verbose.
type Settings struct {
	// ConfigPath overrides the BINN_CONFIG environment variable.
	ConfigPath string

	// Level is the logger level that --verbose lowers to Debug.
	Level *slog.LevelVar

	loaded *config.Config
}

// NewSettings returns Settings that adjust level when --verbose is
// given.
func NewSettings(level *slog.LevelVar) *Settings {
	if level == nil {
		level = new(slog.LevelVar)
	}
	return &Settings{Level: level}
}

// AddFlags registers the global flags.
func (s *Settings) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&s.ConfigPath, "config", s.ConfigPath, "path to a YAML configuration file (default: $"+config.EnvironmentVariable+")")
	flag := flagSet.VarPF(verboseValue{level: s.Level}, "verbose", "v", "log debug detail to stderr")
	flag.NoOptDefVal = "true"
}

// Config loads and caches the configuration. Without
// --config and BINN_CONFIG it returns the defaults.
func (s *Settings) Config() (*config.Config, error) {
	if s.loaded != nil {
		return s.loaded, nil
	}

	var (
		loaded *config.Config
		err    error
	)
	if s.ConfigPath != "" {
		loaded, err = config.LoadFile(s.ConfigPath)
	} else {
		loaded, err = config.Load()
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NotFound("configuration: %w", err)
	}
	if err != nil {
		return nil, Validation("invalid configuration: %w", err)
	}
	s.loaded = loaded
	return loaded, nil
}

// UseColor reports whether output written to file should be styled,
// following the output.color policy: "always", "never", or "auto"
// (only on a terminal, and never when NO_COLOR is set).
func UseColor(policy string, file *os.File) bool {
	switch policy {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return IsTerminal(file)
}

// IsTerminal reports whether file is attached to a terminal.
func IsTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}

// verboseValue is a boolean flag that switches a LevelVar between Info
// and Debug.
type verboseValue struct {
	level *slog.LevelVar
}

func (v verboseValue) String() string {
	if v.level == nil {
		return "false"
	}
	return strconv.FormatBool(v.level.Level() <= slog.LevelDebug)
}

func (v verboseValue) Set(s string) error {
	enabled, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if enabled {
		v.level.Set(slog.LevelDebug)
	} else {
		v.level.Set(slog.LevelInfo)
	}
	return nil
}

func (v verboseValue) Type() string { return "bool" }
