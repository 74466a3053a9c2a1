// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import (
	"encoding/binary"
	"fmt"
)

// readUint8 reads an unsigned 8-bit value at offset from buf.
func readUint8(buf []byte, offset uint32) (uint8, error) {
	if offset+1 > uint32(len(buf)) {
		return 0, fmt.Errorf("readUint8 at %d: %w", offset, ErrOutsideBoundary)
	}
	return buf[offset], nil
}

// readUint16 reads a little-endian unsigned 16-bit value at offset from buf.
func readUint16(buf []byte, offset uint32) (uint16, error) {
	if offset+2 > uint32(len(buf)) {
		return 0, fmt.Errorf("readUint16 at %d: %w", offset, ErrOutsideBoundary)
	}
	return binary.LittleEndian.Uint16(buf[offset:]), nil
}

// readUint32 reads a little-endian unsigned 32-bit value at offset from buf.
func readUint32(buf []byte, offset uint32) (uint32, error) {
	if offset+4 > uint32(len(buf)) {
		return 0, fmt.Errorf("readUint32 at %d: %w", offset, ErrOutsideBoundary)
	}
	return binary.LittleEndian.Uint32(buf[offset:]), nil
}

// readUint64 reads a little-endian unsigned 64-bit value at offset from buf.
func readUint64(buf []byte, offset uint32) (uint64, error) {
	if offset+8 > uint32(len(buf)) {
		return 0, fmt.Errorf("readUint64 at %d: %w", offset, ErrOutsideBoundary)
	}
	return binary.LittleEndian.Uint64(buf[offset:]), nil
}

// readBytes returns a bounds-checked slice of buf[offset:offset+size]. The
// returned slice aliases buf; callers that need an owned copy must clone it.
func readBytes(buf []byte, offset, size uint32) ([]byte, error) {
	end := offset + size
	if end < offset || end > uint32(len(buf)) {
		return nil, fmt.Errorf("readBytes at %d, size %d: %w", offset, size, ErrOutsideBoundary)
	}
	return buf[offset:end], nil
}

// writeUint16 writes v little-endian at offset in buf.
func writeUint16(buf []byte, offset uint32, v uint16) error {
	if offset+2 > uint32(len(buf)) {
		return fmt.Errorf("writeUint16 at %d: %w", offset, ErrOutsideBoundary)
	}
	binary.LittleEndian.PutUint16(buf[offset:], v)
	return nil
}

// writeUint32 writes v little-endian at offset in buf.
func writeUint32(buf []byte, offset uint32, v uint32) error {
	if offset+4 > uint32(len(buf)) {
		return fmt.Errorf("writeUint32 at %d: %w", offset, ErrOutsideBoundary)
	}
	binary.LittleEndian.PutUint32(buf[offset:], v)
	return nil
}

// writeBytes copies src into buf starting at offset, replacing exactly
// len(src) bytes. buf must already cover the range.
func writeBytes(buf []byte, offset uint32, src []byte) error {
	end := offset + uint32(len(src))
	if end < offset || end > uint32(len(buf)) {
		return fmt.Errorf("writeBytes at %d, size %d: %w", offset, len(src), ErrOutsideBoundary)
	}
	copy(buf[offset:end], src)
	return nil
}

// growBuffer returns buf grown to at least n bytes, zero-filling the new
// tail. It never shrinks or reallocates if buf is already long enough.
func growBuffer(buf []byte, n uint32) []byte {
	if uint32(len(buf)) >= n {
		return buf
	}
	grown := make([]byte, n)
	copy(grown, buf)
	return grown
}

// minU32 returns the smaller of a and b.
func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
