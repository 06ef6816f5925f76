// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/bureau-foundation/binn/lib/binhash"
	"github.com/bureau-foundation/binn/lib/binn"
)

const (
	// Magic opens every archive.
	Magic = "BNPK"

	// Version is the format version this package writes and reads.
	Version = 1

	// HeaderSize is the size of the fixed header.
	HeaderSize = 26

	// MaxPayload bounds both payload lengths a header may declare.
	MaxPayload = 1 << 30
)

var (
	// ErrNotArchive is returned when the input does not start with Magic.
	ErrNotArchive = errors.New("archive: not a binn archive")

	// ErrDigestMismatch is returned when the payload does not match the
	// trailing digest.
	ErrDigestMismatch = errors.New("archive: payload digest mismatch")
)

// Header is the fixed archive header.
type Header struct {
	Version      uint8
	Compression  Compression
	Count        uint32
	Length       uint64
	StoredLength uint64
}

// Archive is a fully read and verified archive.
type Archive struct {
	Header
	Digest binhash.Digest
	Values []binn.Value
}

// Options controls Write. The zero Options writes uncompressed.
type Options struct {
	Compression Compression

	// Level is the zstd level (1 to 22); 0 uses the default speed. Other
	// compressions ignore it.
	Level int
}

// Write encodes values, compresses the payload, and writes a complete
// archive to w. It returns the header written and the payload digest.
func Write(w io.Writer, values []binn.Value, options Options) (Header, binhash.Digest, error) {
	if uint64(len(values)) > math.MaxUint32 {
		return Header{}, binhash.Digest{}, fmt.Errorf("archive: %d values exceed the format's count field", len(values))
	}

	var payload bytes.Buffer
	encoder := binn.NewEncoder(&payload)
	for index, value := range values {
		if _, err := encoder.Encode(value); err != nil {
			return Header{}, binhash.Digest{}, fmt.Errorf("archive: value %d: %w", index, err)
		}
	}
	if payload.Len() > MaxPayload {
		return Header{}, binhash.Digest{}, fmt.Errorf("archive: payload of %d bytes exceeds %d", payload.Len(), MaxPayload)
	}

	stored, compression, err := compress(payload.Bytes(), options.Compression, options.Level)
	if err != nil {
		return Header{}, binhash.Digest{}, fmt.Errorf("archive: %w", err)
	}
	header := Header{
		Version:      Version,
		Compression:  compression,
		Count:        uint32(len(values)),
		Length:       uint64(payload.Len()),
		StoredLength: uint64(len(stored)),
	}
	digest := binhash.Sum(payload.Bytes())

	for _, part := range [][]byte{header.marshal(), stored, digest[:]} {
		if _, err := w.Write(part); err != nil {
			return Header{}, binhash.Digest{}, fmt.Errorf("archive: writing: %w", err)
		}
	}
	return header, digest, nil
}

func (h Header) marshal() []byte {
	buffer := make([]byte, HeaderSize)
	copy(buffer, Magic)
	buffer[4] = h.Version
	buffer[5] = uint8(h.Compression)
	binary.LittleEndian.PutUint32(buffer[6:], h.Count)
	binary.LittleEndian.PutUint64(buffer[10:], h.Length)
	binary.LittleEndian.PutUint64(buffer[18:], h.StoredLength)
	return buffer
}

// ReadHeader reads and validates the fixed header.
func ReadHeader(r io.Reader) (Header, error) {
	var buffer [HeaderSize]byte
	if _, err := io.ReadFull(r, buffer[:4]); err != nil {
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrNotArchive
		}
		return Header{}, fmt.Errorf("archive: reading header: %w", err)
	}
	if string(buffer[:4]) != Magic {
		return Header{}, ErrNotArchive
	}
	if _, err := io.ReadFull(r, buffer[4:]); err != nil {
		return Header{}, fmt.Errorf("archive: truncated header: %w", unexpected(err))
	}

	header := Header{
		Version:      buffer[4],
		Compression:  Compression(buffer[5]),
		Count:        binary.LittleEndian.Uint32(buffer[6:]),
		Length:       binary.LittleEndian.Uint64(buffer[10:]),
		StoredLength: binary.LittleEndian.Uint64(buffer[18:]),
	}
	return header, header.validate()
}

func (h Header) validate() error {
	switch {
	case h.Version != Version:
		return fmt.Errorf("archive: unsupported version %d", h.Version)
	case !h.Compression.stored():
		return fmt.Errorf("archive: unknown compression tag %d", uint8(h.Compression))
	case h.Length > MaxPayload:
		return fmt.Errorf("archive: declared payload of %d bytes exceeds %d", h.Length, MaxPayload)
	case h.StoredLength > MaxPayload:
		return fmt.Errorf("archive: declared stored payload of %d bytes exceeds %d", h.StoredLength, MaxPayload)
	case h.Compression == CompressionNone && h.StoredLength != h.Length:
		return fmt.Errorf("archive: uncompressed payload stores %d bytes for %d", h.StoredLength, h.Length)
	case h.Compression == CompressionLZ4 && h.Length > h.StoredLength*lz4MaxRatio:
		return fmt.Errorf("archive: %d lz4 bytes cannot expand to %d", h.StoredLength, h.Length)
	case uint64(h.Count) > h.Length:
		// Every value takes at least one byte.
		return fmt.Errorf("archive: %d values cannot fit in %d bytes", h.Count, h.Length)
	}
	return nil
}

// Read reads one archive from r, verifies it, and decodes its values
// with the given decoder limits. Bytes after the digest are left
// unread.
func Read(r io.Reader, limits binn.Limits) (*Archive, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	// Read through a LimitReader so a lying length cannot force an
	// allocation larger than the bytes actually present.
	var stored bytes.Buffer
	if _, err := stored.ReadFrom(io.LimitReader(r, int64(header.StoredLength))); err != nil {
		return nil, fmt.Errorf("archive: reading payload: %w", err)
	}
	if uint64(stored.Len()) != header.StoredLength {
		return nil, fmt.Errorf("archive: payload truncated: have %d of %d bytes: %w",
			stored.Len(), header.StoredLength, io.ErrUnexpectedEOF)
	}
	var want binhash.Digest
	if _, err := io.ReadFull(r, want[:]); err != nil {
		return nil, fmt.Errorf("archive: reading digest: %w", unexpected(err))
	}

	payload, err := decompress(stored.Bytes(), header.Compression, int(header.Length))
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	if got := binhash.Sum(payload); got != want {
		return nil, fmt.Errorf("%w: payload %s, trailer %s", ErrDigestMismatch, got, want)
	}

	values := make([]binn.Value, 0, min(int(header.Count), 1024))
	decoder := binn.NewDecoder(bytes.NewReader(payload), binn.WithLimits(limits))
	for {
		value, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive: value %d: %w", len(values), err)
		}
		values = append(values, value)
	}
	if len(values) != int(header.Count) {
		return nil, fmt.Errorf("archive: header declares %d values, payload holds %d", header.Count, len(values))
	}
	return &Archive{Header: header, Digest: want, Values: values}, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
