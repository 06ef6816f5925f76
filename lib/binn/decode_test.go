// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"testing/iotest"
)

// sampleValues covers every variant with boundary payloads.
func sampleValues() []Value {
	return []Value{
		Null(),
		Bool(true),
		Bool(false),
		U8(0), U8(math.MaxUint8),
		I8(math.MinInt8), I8(math.MaxInt8),
		U16(0), U16(math.MaxUint16),
		I16(math.MinInt16), I16(math.MaxInt16),
		U32(0), U32(math.MaxUint32),
		I32(math.MinInt32), I32(math.MaxInt32),
		U64(0), U64(math.MaxUint64),
		I64(math.MinInt64), I64(math.MaxInt64),
		Float(0), Float(-1.5), Float(float32(math.NaN())), Float(float32(math.Inf(1))), Float(float32(math.Inf(-1))),
		Double(0), Double(math.Copysign(0, -1)), Double(math.Pi), Double(math.NaN()), Double(math.Inf(1)), Double(math.Inf(-1)),
		Double(math.SmallestNonzeroFloat64), Double(math.MaxFloat64),
		Text(""), Text("hello"), Text("日本語 ✓"),
		DateTime("2026-03-04T05:06:07Z"), Date("2026-03-04"), Time("05:06:07"), DecimalStr("-12345678901234567890.000001"),
		DateTime(""), DecimalStr(""),
		Blob(nil), Blob([]byte{0x00, 0xFF, 0x10}),
		List(),
		MapOf(nil),
		ObjectOf(nil),
		List(Bool(true), I8(-1)),
		List(Null(), List(List(List())), Text("nested")),
		MapOf(Map{math.MinInt32: Null(), 0: U8(1), math.MaxInt32: List(Text("x"))}),
		ObjectOf(NewObject(
			Member{"", Null()},
			Member{"name", Text("value")},
			Member{"ключ", MapOf(Map{1: ObjectOf(NewObject(Member{"deep", Blob([]byte{1})}))})},
		)),
	}
}

func TestRoundtripEveryVariant(t *testing.T) {
	for _, value := range sampleValues() {
		data := mustMarshal(t, value)
		decoded, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal(Marshal(%s)): %v", value, err)
		}
		if decoded.Kind() != value.Kind() {
			t.Errorf("%s decoded as kind %s", value, decoded.Kind())
		}
		if !Equal(decoded, value) {
			t.Errorf("roundtrip mismatch: got %s, want %s", decoded, value)
		}
	}
}

func TestRoundtripLargeBlob(t *testing.T) {
	payload := make([]byte, 3*readChunk+17)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	value := Blob(payload)
	decoded, err := Unmarshal(mustMarshal(t, value))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got, _ := decoded.AsBlob()
	if !bytes.Equal(got, payload) {
		t.Error("large blob did not survive the roundtrip")
	}
}

func TestDecodeObjectPreservesOrder(t *testing.T) {
	keys := []string{"zebra", "apple", "mango", "banana"}
	object := NewObject()
	for i, key := range keys {
		object.Set(key, U8(uint8(i)))
	}
	decoded, err := Unmarshal(mustMarshal(t, ObjectOf(object)))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got, _ := decoded.AsObject()
	if strings.Join(got.Keys(), ",") != strings.Join(keys, ",") {
		t.Errorf("decoded keys %v, want %v", got.Keys(), keys)
	}
}

func TestDecodeCleanEOF(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader(nil)).Decode()
	if err != io.EOF {
		t.Fatalf("Decode on empty input = %v, want io.EOF", err)
	}

	if _, err := Unmarshal(nil); err != io.EOF {
		t.Fatalf("Unmarshal(nil) = %v, want io.EOF", err)
	}
}

func TestDecodeSequence(t *testing.T) {
	values := []Value{U32(1), Text("two"), List(Null()), ObjectOf(NewObject(Member{"k", Bool(true)}))}
	var stream bytes.Buffer
	encoder := NewEncoder(&stream)
	for _, value := range values {
		if _, err := encoder.Encode(value); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	// One byte at a time exercises every short read.
	decoder := NewDecoder(iotest.OneByteReader(&stream))
	var decoded []Value
	for {
		value, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Decode after %d values: %v", len(decoded), err)
		}
		decoded = append(decoded, value)
	}
	if len(decoded) != len(values) {
		t.Fatalf("decoded %d values, want %d", len(decoded), len(values))
	}
	for i := range values {
		if !Equal(decoded[i], values[i]) {
			t.Errorf("value %d: got %s, want %s", i, decoded[i], values[i])
		}
	}
	if _, err := decoder.Decode(); err != io.EOF {
		t.Errorf("Decode after end = %v, want io.EOF", err)
	}
}

func TestDecodeTruncation(t *testing.T) {
	for _, value := range sampleValues() {
		data := mustMarshal(t, value)
		for cut := 1; cut < len(data); cut++ {
			prefix := data[:len(data)-cut]
			decoded, err := Unmarshal(prefix)
			if err == nil {
				t.Fatalf("%s with %d bytes removed decoded as %s", value, cut, decoded)
			}
			if err == io.EOF {
				t.Fatalf("%s with %d bytes removed reported clean EOF", value, cut)
			}
			if !errors.Is(err, ErrTruncatedPayload) {
				t.Fatalf("%s with %d bytes removed: got %v, want truncated payload", value, cut, err)
			}
			if !decoded.IsNull() {
				t.Fatalf("%s with %d bytes removed returned partial value %s", value, cut, decoded)
			}
		}
	}
}

func TestDecodeMalformedTag(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		path string
	}{
		{"top level", []byte{0x07}, ""},
		{"unused storage class byte", []byte{0xFF}, ""},
		{"inside list", []byte{0xE0, 0x01, 0x00, 0x00, 0x00, 0x33}, "$[0]"},
		{
			"inside object",
			[]byte{0xE2, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 'k', 0x99},
			`$["k"]`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Unmarshal(test.data)
			if !errors.Is(err, ErrMalformedTag) {
				t.Fatalf("Unmarshal = %v, want malformed tag", err)
			}
			var binnErr *Error
			if !errors.As(err, &binnErr) {
				t.Fatalf("error %v is not *Error", err)
			}
			if binnErr.Path != test.path {
				t.Errorf("Path = %q, want %q", binnErr.Path, test.path)
			}
		})
	}
}

func TestDecodeEveryUnknownTag(t *testing.T) {
	for tag := range 256 {
		if _, known := KindOfTag(byte(tag)); known {
			continue
		}
		_, err := Unmarshal([]byte{byte(tag), 0, 0, 0, 0, 0, 0, 0, 0})
		if CodeOf(err) != CodeMalformedTag {
			t.Errorf("tag 0x%02x: got %v, want malformed tag", tag, err)
		}
	}
}

func TestDecodeDuplicateObjectKey(t *testing.T) {
	data := mustMarshal(t, ObjectOf(NewObject(Member{"a", Null()}, Member{"b", Null()})))
	position := bytes.LastIndexByte(data, 'b')
	data[position] = 'a'

	decoded, err := Unmarshal(data)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("Unmarshal = %v, want duplicate key", err)
	}
	if !decoded.IsNull() {
		t.Errorf("duplicate key returned a value: %s", decoded)
	}
}

func TestDecodeDuplicateMapKeyFailsFast(t *testing.T) {
	data := []byte{
		0xE1, 0x03, 0x00, 0x00, 0x00,
		0x07, 0x00, 0x00, 0x00, 0x00,
		0x07, 0x00, 0x00, 0x00, 0x00,
		// The third entry is garbage; duplicate detection must stop
		// before reaching it.
		0x08, 0x00, 0x00, 0x00, 0x99,
	}
	_, err := Unmarshal(data)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("Unmarshal = %v, want duplicate key", err)
	}
	var binnErr *Error
	errors.As(err, &binnErr)
	if binnErr.Path != "${7}" {
		t.Errorf("Path = %q, want %q", binnErr.Path, "${7}")
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte{0xA0, 0x02, 0x00, 0x00, 0x00, 0xFF, 0xFE}},
		{"date", []byte{0xA2, 0x01, 0x00, 0x00, 0x00, 0xC0}},
		{"object key", []byte{0xE2, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x80, 0x00}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Unmarshal(test.data); !errors.Is(err, ErrInvalidEncoding) {
				t.Fatalf("Unmarshal = %v, want invalid encoding", err)
			}
		})
	}

	// Blob payloads are opaque.
	if _, err := Unmarshal([]byte{0xC0, 0x02, 0x00, 0x00, 0x00, 0xFF, 0xFE}); err != nil {
		t.Fatalf("blob with non-UTF-8 bytes: %v", err)
	}
}

func TestDecodeBoolLenient(t *testing.T) {
	for _, payload := range []byte{0x01, 0x02, 0x7F, 0xFF} {
		value, err := Unmarshal([]byte{TagBool, payload})
		if err != nil {
			t.Fatalf("Unmarshal bool 0x%02x: %v", payload, err)
		}
		if b, ok := value.AsBool(); !ok || !b {
			t.Errorf("bool payload 0x%02x decoded as %s, want true", payload, value)
		}
		if data := mustMarshal(t, value); !bytes.Equal(data, []byte{TagBool, 0x01}) {
			t.Errorf("re-encoding bool payload 0x%02x produced % x", payload, data)
		}
	}
}

func TestDecodeLimits(t *testing.T) {
	longText := mustMarshal(t, Text("12345"))
	threeElements := mustMarshal(t, List(Null(), Null(), Null()))
	nested := mustMarshal(t, List(List(List(List()))))

	tests := []struct {
		name    string
		data    []byte
		options []DecoderOption
		want    error
	}{
		{"text within length", longText, []DecoderOption{WithMaxLength(5)}, nil},
		{"text over length", longText, []DecoderOption{WithMaxLength(4)}, ErrLengthOverflow},
		{"list within count", threeElements, []DecoderOption{WithMaxCount(3)}, nil},
		{"list over count", threeElements, []DecoderOption{WithMaxCount(2)}, ErrLengthOverflow},
		{"nesting within depth", nested, []DecoderOption{WithMaxDepth(4)}, nil},
		{"nesting over depth", nested, []DecoderOption{WithMaxDepth(3)}, ErrDepthOverflow},
		{"zero restores default", longText, []DecoderOption{WithMaxLength(4), WithMaxLength(0)}, nil},
		{"negative count restores default", threeElements, []DecoderOption{WithMaxCount(2), WithMaxCount(-1)}, nil},
		{"zero depth restores default", nested, []DecoderOption{WithMaxDepth(3), WithMaxDepth(0)}, nil},
		{"empty limits keep earlier bound", longText, []DecoderOption{WithMaxLength(4), WithLimits(Limits{})}, ErrLengthOverflow},
		{"limits override earlier bound", longText, []DecoderOption{WithMaxLength(4), WithLimits(Limits{MaxLength: 5})}, nil},
		{"partial limits keep other bounds", threeElements, []DecoderOption{WithMaxCount(2), WithLimits(Limits{MaxLength: 5})}, ErrLengthOverflow},
		{
			"declared length above default",
			[]byte{0xC0, 0xFF, 0xFF, 0xFF, 0xFF, 0x00},
			nil,
			ErrLengthOverflow,
		},
		{
			"declared count above default",
			[]byte{0xE0, 0xFF, 0xFF, 0xFF, 0xFF, 0x00},
			nil,
			ErrLengthOverflow,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Unmarshal(test.data, test.options...)
			if test.want == nil {
				if err != nil {
					t.Fatalf("Unmarshal: %v", err)
				}
				return
			}
			if !errors.Is(err, test.want) {
				t.Fatalf("Unmarshal = %v, want %v", err, test.want)
			}
		})
	}
}

func TestDecodeLyingLengthIsTruncation(t *testing.T) {
	// 48 MiB declared, under the default limit, with only three bytes
	// actually present.
	data := []byte{0xC0, 0x00, 0x00, 0x00, 0x03, 'a', 'b', 'c'}
	_, err := Unmarshal(data)
	if !errors.Is(err, ErrTruncatedPayload) {
		t.Fatalf("Unmarshal = %v, want truncated payload", err)
	}
}

func TestDecodeDeepNestingWithinDefault(t *testing.T) {
	value := List()
	for range DefaultMaxDepth - 1 {
		value = List(value)
	}
	if _, err := Unmarshal(mustMarshal(t, value)); err != nil {
		t.Fatalf("Unmarshal at depth %d: %v", DefaultMaxDepth, err)
	}
	if _, err := Unmarshal(mustMarshal(t, List(value))); !errors.Is(err, ErrDepthOverflow) {
		t.Fatalf("Unmarshal at depth %d = %v, want depth overflow", DefaultMaxDepth+1, err)
	}
}

func TestDecodeTrailingData(t *testing.T) {
	data := append(mustMarshal(t, U8(1)), 0x00)
	_, err := Unmarshal(data)
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("Unmarshal = %v, want trailing data", err)
	}
	var binnErr *Error
	errors.As(err, &binnErr)
	if binnErr.Offset != 2 {
		t.Errorf("Offset = %d, want 2", binnErr.Offset)
	}
}

func TestDecodeErrorIsSticky(t *testing.T) {
	decoder := NewDecoder(bytes.NewReader([]byte{0x07, 0x00}))
	_, first := decoder.Decode()
	if first == nil {
		t.Fatal("Decode accepted an unknown tag")
	}
	_, second := decoder.Decode()
	if second != first {
		t.Errorf("second Decode = %v, want the first error %v", second, first)
	}
}

func TestDecodeErrorMessage(t *testing.T) {
	data := mustMarshal(t, List(ObjectOf(NewObject(Member{"name", Text("abc")}))))
	_, err := Unmarshal(data[:len(data)-1])
	want := `binn: decode text at $[0]["name"]: truncated payload: unexpected EOF: needed 1 more bytes`
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %s", err, want)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error %v does not wrap io.ErrUnexpectedEOF", err)
	}
}

func TestDecodeReaderError(t *testing.T) {
	readErr := errors.New("disk on fire")
	_, err := NewDecoder(iotest.ErrReader(readErr)).Decode()
	if !errors.Is(err, ErrIO) || !errors.Is(err, readErr) {
		t.Fatalf("Decode = %v, want i/o error wrapping the reader's error", err)
	}

	data := mustMarshal(t, Text("abcdef"))
	reader := io.MultiReader(bytes.NewReader(data[:3]), iotest.ErrReader(readErr))
	_, err = NewDecoder(reader).Decode()
	if !errors.Is(err, ErrIO) || !errors.Is(err, readErr) {
		t.Fatalf("Decode mid-value = %v, want i/o error wrapping the reader's error", err)
	}
}

func TestInputOffset(t *testing.T) {
	var stream bytes.Buffer
	encoder := NewEncoder(&stream)
	encoder.EncodeU32(7)
	encoder.EncodeText("abc")

	decoder := NewDecoder(&stream)
	if _, err := decoder.Decode(); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := decoder.InputOffset(); got != 5 {
		t.Errorf("InputOffset after u32 = %d, want 5", got)
	}
	if _, err := decoder.Decode(); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := decoder.InputOffset(); got != 13 {
		t.Errorf("InputOffset after text = %d, want 13", got)
	}
}

func TestTypedDecoders(t *testing.T) {
	var stream bytes.Buffer
	encoder := NewEncoder(&stream)
	encoder.EncodeNull()
	encoder.EncodeBool(true)
	encoder.EncodeU8(1)
	encoder.EncodeI8(-1)
	encoder.EncodeU16(2)
	encoder.EncodeI16(-2)
	encoder.EncodeU32(3)
	encoder.EncodeI32(-3)
	encoder.EncodeU64(4)
	encoder.EncodeI64(-4)
	encoder.EncodeFloat(0.5)
	encoder.EncodeDouble(0.25)
	encoder.EncodeText("t")
	encoder.EncodeDateTime("dt")
	encoder.EncodeDate("d")
	encoder.EncodeTime("tm")
	encoder.EncodeDecimalStr("1.5")
	encoder.EncodeBlob([]byte{9})
	encoder.EncodeList([]Value{U8(1)})
	encoder.EncodeMap(Map{1: Null()})
	encoder.EncodeObject(NewObject(Member{"k", Null()}))

	d := NewDecoder(&stream)
	check := func(name string, err error, ok bool) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !ok {
			t.Errorf("%s returned the wrong payload", name)
		}
	}

	check("DecodeNull", d.DecodeNull(), true)
	b, err := d.DecodeBool()
	check("DecodeBool", err, b)
	u8, err := d.DecodeU8()
	check("DecodeU8", err, u8 == 1)
	i8, err := d.DecodeI8()
	check("DecodeI8", err, i8 == -1)
	u16, err := d.DecodeU16()
	check("DecodeU16", err, u16 == 2)
	i16, err := d.DecodeI16()
	check("DecodeI16", err, i16 == -2)
	u32, err := d.DecodeU32()
	check("DecodeU32", err, u32 == 3)
	i32, err := d.DecodeI32()
	check("DecodeI32", err, i32 == -3)
	u64, err := d.DecodeU64()
	check("DecodeU64", err, u64 == 4)
	i64, err := d.DecodeI64()
	check("DecodeI64", err, i64 == -4)
	f32, err := d.DecodeFloat()
	check("DecodeFloat", err, f32 == 0.5)
	f64, err := d.DecodeDouble()
	check("DecodeDouble", err, f64 == 0.25)
	text, err := d.DecodeText()
	check("DecodeText", err, text == "t")
	dateTime, err := d.DecodeDateTime()
	check("DecodeDateTime", err, dateTime == "dt")
	date, err := d.DecodeDate()
	check("DecodeDate", err, date == "d")
	timeOfDay, err := d.DecodeTime()
	check("DecodeTime", err, timeOfDay == "tm")
	decimal, err := d.DecodeDecimalStr()
	check("DecodeDecimalStr", err, decimal == "1.5")
	blob, err := d.DecodeBlob()
	check("DecodeBlob", err, bytes.Equal(blob, []byte{9}))
	list, err := d.DecodeList()
	check("DecodeList", err, len(list) == 1 && Equal(list[0], U8(1)))
	m, err := d.DecodeMap()
	check("DecodeMap", err, m.Equal(Map{1: Null()}))
	object, err := d.DecodeObject()
	check("DecodeObject", err, object.Equal(NewObject(Member{"k", Null()})))

	if _, err := d.DecodeU8(); err != io.EOF {
		t.Errorf("DecodeU8 at end = %v, want io.EOF", err)
	}
}

func TestTypedDecoderWrongTag(t *testing.T) {
	decoder := NewDecoder(bytes.NewReader(mustMarshal(t, U8(5))))
	_, err := decoder.DecodeText()
	if !errors.Is(err, ErrMalformedTag) {
		t.Fatalf("DecodeText on u8 = %v, want malformed tag", err)
	}
	if !strings.Contains(err.Error(), "found u8") {
		t.Errorf("error %q does not name the kind found", err)
	}
}

func TestTypedDecoderTruncated(t *testing.T) {
	decoder := NewDecoder(bytes.NewReader([]byte{TagU32, 0x01}))
	if _, err := decoder.DecodeU32(); !errors.Is(err, ErrTruncatedPayload) {
		t.Fatalf("DecodeU32 on short input = %v, want truncated payload", err)
	}
}

func FuzzDecode(f *testing.F) {
	for _, value := range sampleValues() {
		data, err := Marshal(value)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(data)
	}
	f.Add([]byte{0xE0, 0xFF, 0xFF, 0xFF, 0x00})
	f.Add([]byte{0xE2, 0x02, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 'a', 0x00, 0x01, 0x00, 0x00, 0x00, 'a', 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		decoder := NewDecoder(bytes.NewReader(data), WithMaxLength(1<<16), WithMaxCount(1<<12), WithMaxDepth(64))
		for {
			value, err := decoder.Decode()
			if err != nil {
				if err != io.EOF && CodeOf(err) == 0 {
					t.Fatalf("Decode returned an untyped error: %v", err)
				}
				return
			}
			encoded, err := Marshal(value)
			if err != nil {
				t.Fatalf("Marshal of decoded value: %v", err)
			}
			again, err := Unmarshal(encoded)
			if err != nil {
				t.Fatalf("Unmarshal of re-encoded value: %v", err)
			}
			if !Equal(again, value) {
				t.Fatalf("re-encoded value differs: %s vs %s", again, value)
			}
		}
	})
}

func BenchmarkDecode(b *testing.B) {
	data := mustMarshal(b, benchmarkValue())
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Unmarshal(data); err != nil {
			b.Fatal(err)
		}
	}
}

func TestDecodeDuplicateKeyBeforeValue(t *testing.T) {
	// {"a": null, "a": <text with no payload>}: the repeated key fails
	// before its truncated value is read.
	data := []byte{
		0xE2, 0x02, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00, 'a', 0x00,
		0x01, 0x00, 0x00, 0x00, 'a', 0xA0, 0x09, 0x00,
	}
	decoder := NewDecoder(bytes.NewReader(data))
	_, err := decoder.Decode()
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("Decode = %v, want %v", err, ErrDuplicateKey)
	}
	if offset := decoder.InputOffset(); offset != 16 {
		t.Errorf("InputOffset = %d, want 16 (just past the repeated key)", offset)
	}
}
