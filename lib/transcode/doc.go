// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transcode converts binn values to and from other
// self-describing formats: JSON (and JSONC for input), YAML, CBOR,
// MessagePack, and the protobuf Struct well-known type.
//
// Every format except binn itself has a smaller type system, so most
// conversions lose information in one direction. Integer width survives
// MessagePack in both directions. CBOR keeps signedness but not width.
// JSON and YAML keep integers but not width (see
// [Options.NarrowIntegers] for picking the smallest width on input).
// protobuf Struct reduces every number to a double.
//
// Decode returns every value in the input, in order: JSON, YAML, CBOR,
// MessagePack, and binn inputs may hold a sequence of concatenated
// values (or YAML documents). Encode writes the values back as the same
// kind of sequence.
package transcode
