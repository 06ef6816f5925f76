// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrTooLarge is returned by NewFromReader when the source holds more
// than the limit.
var ErrTooLarge = errors.New("secret: source exceeds limit")

// Buffer holds sensitive bytes in an mmap region outside the Go heap.
// A Buffer must not be copied after creation.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	length int
	closed bool
}

// New allocates a locked, dump-excluded buffer of size bytes. The
// caller must Close it.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}
	data, err := mapLocked(size)
	if err != nil {
		return nil, err
	}
	return &Buffer{data: data, length: size}, nil
}

func mapLocked(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}
	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}
	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}
	return data, nil
}

// NewFromBytes copies source into a new buffer and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}
	buffer, err := New(len(source))
	if err != nil {
		Zero(source)
		return nil, err
	}
	copy(buffer.data, source)
	Zero(source)
	return buffer, nil
}

// NewFromReader reads r to EOF into a new buffer. Reading more than
// limit bytes fails with ErrTooLarge. An empty source yields a buffer
// with Len 0.
func NewFromReader(r io.Reader, limit int) (*Buffer, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("secret: limit must be positive, got %d", limit)
	}

	// The region grows by doubling; each outgrown region is zeroed
	// before it is unmapped.
	capacity := min(limit, 4096)
	data, err := mapLocked(capacity)
	if err != nil {
		return nil, err
	}
	buffer := &Buffer{data: data}
	for {
		if buffer.length == len(buffer.data) {
			if buffer.length == limit {
				var probe [1]byte
				if n, _ := io.ReadFull(r, probe[:]); n > 0 {
					buffer.Close()
					return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, limit)
				}
				return buffer, nil
			}
			if err := buffer.grow(min(len(buffer.data)*2, limit)); err != nil {
				buffer.Close()
				return nil, err
			}
		}
		n, err := r.Read(buffer.data[buffer.length:])
		buffer.length += n
		if err == io.EOF {
			return buffer, nil
		}
		if err != nil {
			buffer.Close()
			return nil, fmt.Errorf("secret: reading source: %w", err)
		}
	}
}

func (b *Buffer) grow(size int) error {
	data, err := mapLocked(size)
	if err != nil {
		return err
	}
	copy(data, b.data[:b.length])
	release(b.data)
	b.data = data
	return nil
}

// Bytes returns the secret bytes. The slice points into the mapped
// region and must not outlive the Buffer. Panics after Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.data[:b.length]
}

// String returns a heap copy of the secret. Use it only where an API
// requires a string. Panics after Close.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.data[:b.length])
}

// Len returns the number of secret bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// Close zeroes, unlocks, and unmaps the buffer. It is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	err := release(b.data)
	b.data = nil
	return err
}

func release(data []byte) error {
	Zero(data)
	var firstError error
	if err := unix.Munlock(data); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}
	return firstError
}

// Zero overwrites b with zero bytes.
func Zero(b []byte) {
	clear(b)
}
