// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how an archive payload is stored. The values
// of the stored tags are part of the file format.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = 0

	// CompressionLZ4 stores one LZ4 block. Fast, modest ratio.
	CompressionLZ4 Compression = 1

	// CompressionZstd stores one zstd frame. Better ratio for text-heavy
	// values.
	CompressionZstd Compression = 2

	// CompressionAuto is only an option for Write: it probes the
	// payload and picks one of the stored tags. It never appears in a
	// file.
	CompressionAuto Compression = 0xFF
)

// String returns the name of a compression tag.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	case CompressionAuto:
		return "auto"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	case "auto", "":
		return CompressionAuto, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4, zstd, or auto)", name)
	}
}

func (c Compression) stored() bool {
	return c == CompressionNone || c == CompressionLZ4 || c == CompressionZstd
}

// errIncompressible reports that compression did not shrink the
// payload; the caller stores it uncompressed.
var errIncompressible = errors.New("payload is incompressible")

// lz4MaxRatio bounds how much an LZ4 block can expand on
// decompression, so a header cannot claim more output than the stored
// bytes could produce.
const lz4MaxRatio = 255

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, length int) ([]byte, error) {
	destination := make([]byte, length)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != length {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, length)
	}
	return destination, nil
}

// zstdEncoder and zstdDecoder are shared; both are safe for concurrent
// use. Non-default levels get a short-lived encoder.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("archive: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxPayload))
	if err != nil {
		panic("archive: zstd decoder initialization failed: " + err.Error())
	}
}

// compressZstd compresses with the shared encoder when level is 0, and
// otherwise at the zstd level given (1 to 22, mapped onto the encoder's
// four speeds).
func compressZstd(data []byte, level int) ([]byte, error) {
	encoder := zstdEncoder
	if level != 0 {
		var err error
		encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		defer encoder.Close()
	}
	compressed := encoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, length int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, min(length, 4*len(compressed)+4096)))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != length {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), length)
	}
	return result, nil
}

// probeSize is how much of the payload auto selection compresses.
const probeSize = 1 << 20

// selectCompression probes a prefix of data with zstd: a ratio of at
// least 1.5 picks zstd, at least 1.1 picks lz4, anything lower stores
// the payload uncompressed.
func selectCompression(data []byte) Compression {
	if len(data) == 0 {
		return CompressionNone
	}
	probe := data[:min(len(data), probeSize)]
	compressed := zstdEncoder.EncodeAll(probe, nil)
	ratio := float64(len(probe)) / float64(len(compressed))
	switch {
	case ratio >= 1.5:
		return CompressionZstd
	case ratio >= 1.1:
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// compress returns the stored form of data and the tag actually used.
// Auto selection and incompressible data fall back as needed.
func compress(data []byte, compression Compression, level int) ([]byte, Compression, error) {
	if compression == CompressionAuto {
		compression = selectCompression(data)
	}
	var (
		stored []byte
		err    error
	)
	switch compression {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		stored, err = compressLZ4(data)
	case CompressionZstd:
		stored, err = compressZstd(data, level)
	default:
		return nil, 0, fmt.Errorf("unsupported compression %s", compression)
	}
	if errors.Is(err, errIncompressible) {
		return data, CompressionNone, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return stored, compression, nil
}

func decompress(stored []byte, compression Compression, length int) ([]byte, error) {
	switch compression {
	case CompressionNone:
		if len(stored) != length {
			return nil, fmt.Errorf("uncompressed payload: size %d does not match expected %d", len(stored), length)
		}
		return stored, nil
	case CompressionLZ4:
		return decompressLZ4(stored, length)
	case CompressionZstd:
		return decompressZstd(stored, length)
	}
	return nil, fmt.Errorf("unsupported compression %s", compression)
}
