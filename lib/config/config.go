// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/binn/lib/archive"
	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/sealed"
	"github.com/bureau-foundation/binn/lib/transcode"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "BINN_CONFIG"

// Color policies for styled terminal output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the complete tool configuration.
type Config struct {
	Limits  LimitsConfig  `yaml:"limits"`
	Output  OutputConfig  `yaml:"output"`
	Archive ArchiveConfig `yaml:"archive"`
	Seal    SealConfig    `yaml:"seal"`
}

// LimitsConfig bounds binn decoding. Zero keeps the built-in default.
type LimitsConfig struct {
	// MaxLength caps any single text or blob payload, in bytes.
	MaxLength int `yaml:"max_length"`

	// MaxCount caps the declared element count of any container.
	MaxCount int `yaml:"max_count"`

	// MaxDepth caps container nesting.
	MaxDepth int `yaml:"max_depth"`
}

// OutputConfig sets defaults for commands that render values.
type OutputConfig struct {
	// Format is the default output format of convert (any writable
	// transcode format).
	Format string `yaml:"format"`

	// Compact writes JSON one value per line and YAML in flow style.
	Compact bool `yaml:"compact"`

	// Color is auto (style when stdout is a terminal), always, or never.
	Color string `yaml:"color"`
}

// ArchiveConfig sets defaults for pack.
type ArchiveConfig struct {
	// Compression is none, lz4, zstd, or auto.
	Compression string `yaml:"compression"`

	// Level is the zstd level, 1 to 22; 0 uses the default speed.
	Level int `yaml:"level"`
}

// SealConfig sets defaults for seal and open.
type SealConfig struct {
	// IdentityFile is the age identity open uses when -i is not given.
	IdentityFile string `yaml:"identity_file"`

	// Recipients are the age1... keys seal encrypts to when -r is not
	// given.
	Recipients []string `yaml:"recipients"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format: string(transcode.FormatJSON),
			Color:  ColorAuto,
		},
		Archive: ArchiveConfig{
			Compression: "auto",
		},
	}
}

// Load loads the file named by BINN_CONFIG, or returns Default when the
// variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads and validates the configuration at path. Fields the
// file leaves out keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration over Default, expands variables, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecoderLimits returns the limits section as binn decoder limits.
func (c *Config) DecoderLimits() binn.Limits {
	return binn.Limits{
		MaxLength: c.Limits.MaxLength,
		MaxCount:  c.Limits.MaxCount,
		MaxDepth:  c.Limits.MaxDepth,
	}
}

func (c *Config) expandVariables() {
	c.Seal.IdentityFile = expandVars(c.Seal.IdentityFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}. An unset or empty
// variable without a default expands to nothing.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	limits := []struct {
		name  string
		value int
	}{
		{"limits.max_length", c.Limits.MaxLength},
		{"limits.max_count", c.Limits.MaxCount},
		{"limits.max_depth", c.Limits.MaxDepth},
	}
	for _, limit := range limits {
		if limit.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", limit.name, limit.value))
		}
	}

	if format, err := transcode.Parse(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	} else if format == transcode.FormatJSONC {
		errs = append(errs, fmt.Errorf("output.format: %s is read-only", format))
	}
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("output.color must be one of %s, %s, %s; got %q", ColorAuto, ColorAlways, ColorNever, c.Output.Color))
	}

	if _, err := archive.ParseCompression(c.Archive.Compression); err != nil {
		errs = append(errs, fmt.Errorf("archive.compression: %w", err))
	}
	if c.Archive.Level < 0 || c.Archive.Level > 22 {
		errs = append(errs, fmt.Errorf("archive.level must be between 0 and 22, got %d", c.Archive.Level))
	}

	for index, recipient := range c.Seal.Recipients {
		if err := sealed.ParsePublicKey(recipient); err != nil {
			errs = append(errs, fmt.Errorf("seal.recipients[%d]: %w", index, err))
		}
	}

	return errors.Join(errs...)
}
