// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Diagnostic notation is a one-line text rendering that keeps every
// variant distinguishable:
//
//	null  true  u8(7)  i64(-3)  f32(1.5)  f64(NaN)
//	"text"  datetime("2026-01-02T03:04:05Z")  decimal("1.10")
//	h'00ff'  [u8(1), "a"]  map{1: null, 7: true}  {"k": i32(5)}
//
// Map entries appear in ascending key order and object members in
// insertion order, which is the order both are encoded in.

// TokenClass names the kind of token a [Styler] is asked to render.
type TokenClass int

const (
	TokenNull TokenClass = iota
	TokenBool
	TokenNumber
	TokenString
	TokenBytes
	TokenKey
	TokenAnnotation
	TokenPunctuation
)

// Styler decorates one token of diagnostic notation, typically with
// terminal colors. It must return text that reads the same once the
// decoration is stripped.
type Styler func(class TokenClass, token string) string

// Diagnose returns the diagnostic notation of v.
func Diagnose(v Value) string {
	return DiagnoseStyled(v, nil)
}

// DiagnoseStyled returns the diagnostic notation of v with every token
// passed through style. A nil style leaves tokens unchanged.
func DiagnoseStyled(v Value, style Styler) string {
	printer := diagPrinter{style: style}
	printer.value(v)
	return printer.String()
}

// String returns the diagnostic notation of v with every container
// shortened to its first 10 elements.
func (v Value) String() string {
	printer := diagPrinter{limit: 10}
	printer.value(v)
	return printer.String()
}

// DiagnoseSequence decodes every value in data, a concatenation of
// encoded values, and returns their diagnostic notation one per line.
// On a decode failure it returns the lines rendered so far together
// with an error naming the index and byte offset of the failing value.
func DiagnoseSequence(data []byte, options ...DecoderOption) (string, error) {
	return DiagnoseSequenceStyled(data, nil, options...)
}

// DiagnoseSequenceStyled is DiagnoseSequence with styled tokens.
func DiagnoseSequenceStyled(data []byte, style Styler, options ...DecoderOption) (string, error) {
	decoder := NewDecoder(bytes.NewReader(data), options...)
	var output strings.Builder
	for index := 0; ; index++ {
		start := decoder.InputOffset()
		value, err := decoder.Decode()
		if err == io.EOF {
			return output.String(), nil
		}
		if err != nil {
			return output.String(), fmt.Errorf("value %d at byte %d: %w", index, start, err)
		}
		output.WriteString(DiagnoseStyled(value, style))
		output.WriteByte('\n')
	}
}

type diagPrinter struct {
	strings.Builder
	style Styler

	// limit is the number of container elements rendered before the
	// rest are elided. Zero renders everything.
	limit int
}

func (p *diagPrinter) token(class TokenClass, text string) {
	if p.style != nil {
		text = p.style(class, text)
	}
	p.WriteString(text)
}

// annotated renders name(inner), styling name as an annotation.
func (p *diagPrinter) annotated(name string, class TokenClass, inner string) {
	p.token(TokenAnnotation, name)
	p.token(TokenPunctuation, "(")
	p.token(class, inner)
	p.token(TokenPunctuation, ")")
}

func (p *diagPrinter) value(v Value) {
	switch v.kind {
	case KindNull:
		p.token(TokenNull, "null")
	case KindBool:
		p.token(TokenBool, strconv.FormatBool(v.bits != 0))
	case KindU8, KindU16, KindU32, KindU64:
		p.annotated(v.kind.String(), TokenNumber, strconv.FormatUint(v.bits, 10))
	case KindI8, KindI16, KindI32, KindI64:
		p.annotated(v.kind.String(), TokenNumber, strconv.FormatInt(int64(v.bits), 10))
	case KindFloat:
		f, _ := v.AsFloat()
		p.annotated("f32", TokenNumber, formatFloat(float64(f), 32))
	case KindDouble:
		f, _ := v.AsDouble()
		p.annotated("f64", TokenNumber, formatFloat(f, 64))
	case KindText:
		p.token(TokenString, strconv.Quote(v.str))
	case KindDateTime, KindDate, KindTime, KindDecimalStr:
		p.annotated(v.kind.String(), TokenString, strconv.Quote(v.str))
	case KindBlob:
		p.token(TokenBytes, "h'"+hex.EncodeToString(v.blob)+"'")
	case KindList:
		p.token(TokenPunctuation, "[")
		for i, element := range v.list {
			if p.separate(i) {
				break
			}
			p.value(element)
		}
		p.token(TokenPunctuation, "]")
	case KindMap:
		p.token(TokenAnnotation, "map")
		p.token(TokenPunctuation, "{")
		for i, key := range v.m.Keys() {
			if p.separate(i) {
				break
			}
			p.token(TokenKey, strconv.FormatInt(int64(key), 10))
			p.token(TokenPunctuation, ": ")
			p.value(v.m[key])
		}
		p.token(TokenPunctuation, "}")
	case KindObject:
		p.token(TokenPunctuation, "{")
		i := 0
		for key, element := range v.obj.All() {
			if p.separate(i) {
				break
			}
			p.token(TokenKey, strconv.Quote(key))
			p.token(TokenPunctuation, ": ")
			p.value(element)
			i++
		}
		p.token(TokenPunctuation, "}")
	default:
		p.token(TokenAnnotation, v.kind.String())
	}
}

// separate writes the separator before element i and reports whether
// the element limit was reached, in which case it writes the elision
// marker instead.
func (p *diagPrinter) separate(i int) bool {
	if i > 0 {
		p.token(TokenPunctuation, ", ")
	}
	if p.limit > 0 && i == p.limit {
		p.token(TokenPunctuation, "...")
		return true
	}
	return false
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}
