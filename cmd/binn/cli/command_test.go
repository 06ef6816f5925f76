// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

var discardLogger = slog.New(slog.DiscardHandler)

func execute(command *Command, args ...string) error {
	return command.Execute(context.Background(), args, discardLogger)
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "binn",
		Subcommands: []*Command{
			{
				Name: "decode",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "decode"
					return nil
				},
			},
			{
				Name: "encode",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "encode"
					return nil
				},
			},
		},
	}

	if err := execute(root, "encode"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "encode" {
		t.Errorf("dispatched to %q, want %q", called, "encode")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "binn",
		Subcommands: []*Command{
			{
				Name: "archive",
				Subcommands: []*Command{
					{
						Name: "pack",
						Run: func(_ context.Context, args []string, _ *slog.Logger) error {
							called = "archive pack"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := execute(root, "archive", "pack", "values.binn"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "archive pack" {
		t.Errorf("dispatched to %q, want %q", called, "archive pack")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "values.binn" {
		t.Errorf("args = %v, want [values.binn]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var output string
	var input string

	command := &Command{
		Name: "pack",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("pack", pflag.ContinueOnError)
			flagSet.StringVarP(&output, "output", "o", "out.bnpk", "archive path")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				input = args[0]
			}
			return nil
		},
	}

	if err := execute(command, "--output", "custom.bnpk", "values.binn"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if output != "custom.bnpk" {
		t.Errorf("output = %q, want %q", output, "custom.bnpk")
	}
	if input != "values.binn" {
		t.Errorf("input = %q, want %q", input, "values.binn")
	}
}

func TestCommand_Execute_Params(t *testing.T) {
	type decodeParams struct {
		Compact bool `flag:"compact,c" desc:"compact output"`
	}
	var params decodeParams
	var ran bool

	command := &Command{
		Name:   "decode",
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			ran = true
			return nil
		},
	}

	if err := execute(command, "-c"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !ran {
		t.Fatal("Run was not called")
	}
	if !params.Compact {
		t.Error("Compact = false, want true")
	}
}

func TestCommand_Execute_ParentFlagsBeforeSubcommand(t *testing.T) {
	type rootParams struct {
		Color string `flag:"color" desc:"color policy" default:"auto"`
	}
	var params rootParams
	var receivedArgs []string

	root := &Command{
		Name:   "binn",
		Params: func() any { return &params },
		Subcommands: []*Command{
			{
				Name: "diag",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					receivedArgs = args
					return nil
				},
			},
		},
	}

	if err := execute(root, "--color", "never", "diag", "value.binn"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if params.Color != "never" {
		t.Errorf("Color = %q, want %q", params.Color, "never")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "value.binn" {
		t.Errorf("args = %v, want [value.binn]", receivedArgs)
	}
}

func TestCommand_Execute_RunFallback(t *testing.T) {
	var receivedArgs []string

	root := &Command{
		Name: "binn",
		Subcommands: []*Command{
			{Name: "decode", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			receivedArgs = args
			return nil
		},
	}

	if err := execute(root, ".name", "value.binn"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 2 || receivedArgs[0] != ".name" {
		t.Errorf("args = %v, want [.name value.binn]", receivedArgs)
	}

	receivedArgs = nil
	if err := execute(root); err != nil {
		t.Fatalf("Execute() with no args error: %v", err)
	}
	if len(receivedArgs) != 0 {
		t.Errorf("args = %v, want none", receivedArgs)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "decode",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			flagSet.Bool("compact", false, "compact output")
			flagSet.Bool("slurp", false, "wrap values in an array")
			return flagSet
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := execute(command, "--compcat")
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --compact") {
		t.Errorf("error = %q, want suggestion for '--compact'", errStr)
	}
	if !strings.Contains(errStr, "compcat") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
	if CategoryOf(err) != CategoryValidation {
		t.Errorf("CategoryOf = %q, want %q", CategoryOf(err), CategoryValidation)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "decode",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			flagSet.Bool("compact", false, "compact output")
			return flagSet
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := execute(command, "--zzzzzzzzz")
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "binn",
		Subcommands: []*Command{
			{Name: "decode"},
			{Name: "validate"},
			{Name: "version"},
		},
	}

	err := execute(root, "valdate")
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"validate\"") {
		t.Errorf("error = %q, want suggestion for 'validate'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "binn",
		Subcommands: []*Command{
			{Name: "decode"},
			{Name: "encode"},
		},
	}

	err := execute(root, "zzzzzzz")
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "binn",
				Summary: "Binary value codec",
				Subcommands: []*Command{
					{Name: "decode", Summary: "Convert binn to JSON"},
				},
			}

			if err := execute(root, helpArg); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "binn",
		Subcommands: []*Command{
			{Name: "decode", Summary: "Convert binn to JSON"},
		},
	}

	err := execute(root)
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_Execute_RunErrorPassesThrough(t *testing.T) {
	sentinel := errors.New("boom")
	command := &Command{
		Name: "hash",
		Run:  func(context.Context, []string, *slog.Logger) error { return sentinel },
	}
	if err := execute(command); !errors.Is(err, sentinel) {
		t.Errorf("Execute() = %v, want %v", err, sentinel)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "binn",
		Description: "Inspect and produce binn-encoded values.",
		Subcommands: []*Command{
			{Name: "decode", Summary: "Convert binn to JSON"},
			{Name: "diag", Summary: "Show diagnostic notation"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Decode a file",
				Command:     "binn decode values.binn",
			},
			{
				Description: "Pack values into an archive",
				Command:     "binn pack -o values.bnpk values.binn",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Inspect and produce binn-encoded values.",
		"Usage:",
		"binn <command> [flags]",
		"Commands:",
		"decode",
		"Convert binn to JSON",
		"diag",
		"Show diagnostic notation",
		"Examples:",
		"binn decode values.binn",
		"binn pack -o values.bnpk",
		"Run 'binn <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	type packParams struct {
		Output string `flag:"output,o" desc:"archive path"`
		Level  int    `flag:"level" desc:"zstd level"`
	}
	var params packParams

	command := &Command{
		Name:    "pack",
		Summary: "Pack values into an archive",
		Usage:   "binn pack -o <archive> [file...]",
		Params:  func() any { return &params },
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"binn pack -o <archive> [file...]",
		"Flags:",
		"--output",
		"-o",
		"--level",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "binn"}
	archive := &Command{Name: "archive", parent: root}
	pack := &Command{Name: "pack", parent: archive}

	if got := root.fullName(); got != "binn" {
		t.Errorf("root.fullName() = %q, want %q", got, "binn")
	}
	if got := archive.fullName(); got != "binn archive" {
		t.Errorf("archive.fullName() = %q, want %q", got, "binn archive")
	}
	if got := pack.fullName(); got != "binn archive pack" {
		t.Errorf("pack.fullName() = %q, want %q", got, "binn archive pack")
	}
}

func TestCommand_Execute_DashIsNotAFlag(t *testing.T) {
	var receivedArgs []string
	root := &Command{
		Name:        "binn",
		Subcommands: []*Command{{Name: "decode", Run: func(context.Context, []string, *slog.Logger) error { return nil }}},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			receivedArgs = args
			return nil
		},
	}

	if err := execute(root, "-"); err != nil {
		t.Fatalf("Execute(-) error: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "-" {
		t.Errorf("args = %v, want [-]", receivedArgs)
	}
}
