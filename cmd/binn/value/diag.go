// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/config"
)

// diagParams holds the parameters for the "binn diag" command.
type diagParams struct {
	inputParams
	Color string `json:"color" flag:"color" desc:"color policy: auto, always, never (default: output.color from config)"`
}

func diagCommand(settings *cli.Settings) *cli.Command {
	var params diagParams

	return &cli.Command{
		Name:    "diag",
		Summary: "Convert a binn stream to diagnostic notation",
		Description: `Read binn values and write each one in diagnostic notation, one
value per line.

Unlike JSON output, diagnostic notation preserves binn type
information: integer width and sign, float vs double, text vs
datetime vs decimal strings, blobs, and integer-keyed maps:

  {"id": u8(7), "tags": ["a"]}      object with a u8 member
  map{1: "subject", 2: true}        integer-keyed map
  h'00ff'                           blob in hex
  decimal("1.10")                   decimal string

On a terminal, tokens are colored by class. A decode failure prints
the values read so far, then an error naming the byte offset of the
value that failed.`,
		Usage: "binn diag [-x] [--color auto|always|never] [file]",
		Examples: []cli.Example{
			{
				Description: "Show diagnostic notation for a file",
				Command:     "binn diag values.binn",
			},
			{
				Description: "Encode JSON and inspect the binn types",
				Command:     "echo '{\"count\":42}' | binn encode --narrow | binn diag",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			cfg, err := settings.Config()
			if err != nil {
				return err
			}
			data, remainingArgs, err := readInput(args, params.HexInput)
			if err != nil {
				return err
			}
			if err := noExtraArgs("diag", remainingArgs); err != nil {
				return err
			}

			policy := params.Color
			if policy == "" {
				policy = cfg.Output.Color
			}
			switch policy {
			case config.ColorAuto, config.ColorAlways, config.ColorNever:
			default:
				return cli.Validation("--color must be one of auto, always, never; got %q", policy)
			}
			var style binn.Styler
			if cli.UseColor(policy, os.Stdout) {
				style = newTheme(os.Stdout).style
			}
			logger.Debug("diagnosing", "bytes", len(data), "styled", style != nil)
			return diagValues(data, os.Stdout, style, cfg.DecoderLimits())
		},
	}
}

// diagValues writes the diagnostic notation of every value in data to
// w. Values decoded before a failure are written before the error is
// returned.
func diagValues(data []byte, w io.Writer, style binn.Styler, limits binn.Limits) error {
	if len(data) == 0 {
		return cli.Validation("empty input: expected binn data")
	}

	notation, err := binn.DiagnoseSequenceStyled(data, style, binn.WithLimits(limits))
	if _, writeErr := io.WriteString(w, notation); writeErr != nil {
		return cli.Internal("write output: %w", writeErr)
	}
	if err != nil {
		return cli.Validation("diagnose: %w", err)
	}
	return nil
}

// theme colors diagnostic notation tokens. Colors are ANSI 256-color
// codes for broad terminal compatibility.
type theme struct {
	styles map[binn.TokenClass]lipgloss.Style
}

func newTheme(w io.Writer) *theme {
	// Callers only build a theme once color is decided; the profile is
	// fixed so --color always also colors pipes.
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.ANSI256)

	return &theme{styles: map[binn.TokenClass]lipgloss.Style{
		binn.TokenNull:       renderer.NewStyle().Foreground(lipgloss.Color("245")),
		binn.TokenBool:       renderer.NewStyle().Foreground(lipgloss.Color("214")),
		binn.TokenNumber:     renderer.NewStyle().Foreground(lipgloss.Color("39")),
		binn.TokenString:     renderer.NewStyle().Foreground(lipgloss.Color("114")),
		binn.TokenBytes:      renderer.NewStyle().Foreground(lipgloss.Color("176")),
		binn.TokenKey:        renderer.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		binn.TokenAnnotation: renderer.NewStyle().Foreground(lipgloss.Color("245")),
	}}
}

// style implements binn.Styler. Punctuation is left plain.
func (t *theme) style(class binn.TokenClass, token string) string {
	style, ok := t.styles[class]
	if !ok {
		return token
	}
	return style.Render(token)
}
