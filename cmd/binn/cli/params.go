// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FlagBinder is implemented by types that register their own flags.
// [BindFlags] calls AddFlags for a field of such a type instead of
// reading its struct tags. [Settings] uses this to bind --verbose
// straight to the logger's level.
type FlagBinder interface {
	AddFlags(flagSet *pflag.FlagSet)
}

// FlagsFromParams returns a flag set bound to the tagged fields of
// params, a pointer to a struct. It panics when binding fails: a bad
// tag is a programming error, not user input.
//
// Commands normally set [Command.Params] and let Execute call this:
//
//	var params hashParams
//	command := &cli.Command{
//	    Params: func() any { return &params },
//	    Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
//	        // params is populated here
//	    },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a flag on flagSet for every tagged field of
// params, which must be a pointer to a struct.
//
// Tags:
//
//   - flag:"name" or flag:"name,n" gives the long name and an optional
//     one-letter shorthand. Untagged fields are ignored.
//   - desc:"text" is the help text.
//   - default:"value" is parsed as the field's type. Without it the
//     field's zero value is the default.
//
// Field types: string, bool, int, int64, float64, [time.Duration],
// []string (comma-separated or repeated), and any [pflag.Value], which
// is how enumerations like --compression validate their input.
//
// A struct field whose pointer implements [FlagBinder], or a non-nil
// pointer field that implements it, registers itself through AddFlags.
// Other embedded structs are flattened: their tagged fields become
// flags of the outer command.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(value.Elem(), flagSet)
}

func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	structType := structValue.Type()
	for i := range structType.NumField() {
		field := structType.Field(i)
		fieldValue := structValue.Field(i)

		if binder, ok := flagBinder(field, fieldValue); ok {
			binder.AddFlags(flagSet)
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStruct(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		tag, ok := parseFlagTag(field)
		if !ok {
			continue
		}
		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}
		if err := bindField(fieldValue, flagSet, tag); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

// flagBinder returns the FlagBinder behind an exported struct field or
// non-nil pointer field. reflect cannot call Interface on unexported
// fields, so those never qualify.
func flagBinder(field reflect.StructField, fieldValue reflect.Value) (FlagBinder, bool) {
	if !field.IsExported() {
		return nil, false
	}
	switch field.Type.Kind() {
	case reflect.Struct:
		if fieldValue.CanAddr() {
			binder, ok := fieldValue.Addr().Interface().(FlagBinder)
			return binder, ok
		}
	case reflect.Pointer:
		if !fieldValue.IsNil() {
			binder, ok := fieldValue.Interface().(FlagBinder)
			return binder, ok
		}
	}
	return nil, false
}

// flagTag is the parsed flag, desc, and default tags of one field.
type flagTag struct {
	name         string
	shorthand    string
	description  string
	defaultValue string
}

func parseFlagTag(field reflect.StructField) (flagTag, bool) {
	names := field.Tag.Get("flag")
	if names == "" {
		return flagTag{}, false
	}
	name, shorthand, _ := strings.Cut(names, ",")
	return flagTag{
		name:         name,
		shorthand:    shorthand,
		description:  field.Tag.Get("desc"),
		defaultValue: field.Tag.Get("default"),
	}, true
}

func bindField(fieldValue reflect.Value, flagSet *pflag.FlagSet, tag flagTag) error {
	var err error
	switch target := fieldValue.Addr().Interface().(type) {
	case *string:
		flagSet.StringVarP(target, tag.name, tag.shorthand, tag.defaultValue, tag.description)
	case *bool:
		var value bool
		if value, err = parseDefault(tag.defaultValue, strconv.ParseBool); err == nil {
			flagSet.BoolVarP(target, tag.name, tag.shorthand, value, tag.description)
		}
	case *int:
		var value int
		if value, err = parseDefault(tag.defaultValue, strconv.Atoi); err == nil {
			flagSet.IntVarP(target, tag.name, tag.shorthand, value, tag.description)
		}
	case *int64:
		var value int64
		if value, err = parseDefault(tag.defaultValue, parseInt64); err == nil {
			flagSet.Int64VarP(target, tag.name, tag.shorthand, value, tag.description)
		}
	case *float64:
		var value float64
		if value, err = parseDefault(tag.defaultValue, parseFloat64); err == nil {
			flagSet.Float64VarP(target, tag.name, tag.shorthand, value, tag.description)
		}
	case *time.Duration:
		var value time.Duration
		if value, err = parseDefault(tag.defaultValue, time.ParseDuration); err == nil {
			flagSet.DurationVarP(target, tag.name, tag.shorthand, value, tag.description)
		}
	case *[]string:
		var value []string
		if tag.defaultValue != "" {
			value = strings.Split(tag.defaultValue, ",")
		}
		flagSet.StringSliceVarP(target, tag.name, tag.shorthand, value, tag.description)
	case pflag.Value:
		if tag.defaultValue != "" {
			err = target.Set(tag.defaultValue)
		}
		if err == nil {
			flagSet.VarP(target, tag.name, tag.shorthand, tag.description)
		}
	default:
		return fmt.Errorf("unsupported type %s for flag --%s", fieldValue.Type(), tag.name)
	}
	if err != nil {
		return fmt.Errorf("default for --%s: %w", tag.name, err)
	}
	return nil
}

// parseDefault parses a default tag, treating an empty tag as the zero
// value.
func parseDefault[T any](s string, parse func(string) (T, error)) (T, error) {
	if s == "" {
		var zero T
		return zero, nil
	}
	return parse(s)
}

func parseInt64(s string) (int64, error)     { return strconv.ParseInt(s, 10, 64) }
func parseFloat64(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
