// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// compactFunctionHeaderSize is the fixed size, in bytes, of a function
// header's compact ("small") on-disk slot (128 bits, spec §4.4).
const compactFunctionHeaderSize = 16

// largeFunctionHeaderSize is the fixed size, in bytes, of a function
// header's overflow ("large") on-disk record: the same ten fields as the
// compact slot, each widened to an unrestricted 32-bit value.
const largeFunctionHeaderSize = 40

// overflowedFlagBit is the bit position of the `overflowed` flag within a
// function header's flags byte (spec §3, §4.4).
const overflowedFlagBit = 5

// maxSmallBytecodeSize is the largest value the compact slot's 15-bit
// bytecodeSizeInBytes field can hold (spec MAX = 2^15-1).
const maxSmallBytecodeSize = (1 << 15) - 1

// functionHeaderField names each field packed into the compact slot, in
// on-disk order, together with its bit width. Widths sum to exactly 128
// (spec §4.4); identical for every supported version.
var functionHeaderFields = []struct {
	name  string
	width uint
}{
	{"offset", 25},
	{"paramCount", 7},
	{"bytecodeSizeInBytes", 15},
	{"functionName", 17},
	{"infoOffset", 25},
	{"frameSize", 7},
	{"environmentSize", 8},
	{"highestReadCacheIndex", 8},
	{"highestWriteCacheIndex", 8},
	{"flags", 8},
}

// rawFunctionHeader is the decoded value of a compact or large function
// header slot, keyed by field name, prior to being lifted into a
// FunctionHeader/smallFunctionHeader.
type rawFunctionHeader struct {
	offset                  uint32
	paramCount              uint32
	bytecodeSizeInBytes     uint32
	functionName            uint32
	infoOffset              uint32
	frameSize               uint32
	environmentSize         uint32
	highestReadCacheIndex   uint32
	highestWriteCacheIndex  uint32
	flags                   uint32
}

// getBits extracts a width-bit field starting at bit index start from the
// 128-bit little-endian value (lo, hi), where bit 0 is the LSB of lo.
func getBits(lo, hi uint64, start, width uint) uint64 {
	if width == 0 {
		return 0
	}
	mask := uint64(1)<<width - 1
	switch {
	case start+width <= 64:
		return (lo >> start) & mask
	case start >= 64:
		return (hi >> (start - 64)) & mask
	default:
		lowBits := 64 - start
		lowMask := uint64(1)<<lowBits - 1
		lowPart := (lo >> start) & lowMask
		highBits := width - lowBits
		highPart := hi & (uint64(1)<<highBits - 1)
		return lowPart | (highPart << lowBits)
	}
}

// setBits writes a width-bit field starting at bit index start into the
// 128-bit little-endian value represented by (*lo, *hi).
func setBits(lo, hi *uint64, start, width uint, value uint64) {
	if width == 0 {
		return
	}
	mask := uint64(1)<<width - 1
	value &= mask
	switch {
	case start+width <= 64:
		*lo &^= mask << start
		*lo |= value << start
	case start >= 64:
		s := start - 64
		*hi &^= mask << s
		*hi |= value << s
	default:
		lowBits := 64 - start
		lowMask := uint64(1)<<lowBits - 1
		*lo &^= lowMask << start
		*lo |= (value & lowMask) << start
		highBits := width - lowBits
		highMask := uint64(1)<<highBits - 1
		*hi &^= highMask
		*hi |= (value >> lowBits) & highMask
	}
}

// decodeCompactFunctionHeader unpacks the 16-byte compact slot at offset.
func decodeCompactFunctionHeader(buf []byte, offset uint32) (rawFunctionHeader, error) {
	slot, err := readBytes(buf, offset, compactFunctionHeaderSize)
	if err != nil {
		return rawFunctionHeader{}, fmt.Errorf("decodeCompactFunctionHeader: %w", err)
	}
	lo := binary.LittleEndian.Uint64(slot[0:8])
	hi := binary.LittleEndian.Uint64(slot[8:16])

	var raw rawFunctionHeader
	var bit uint
	for _, f := range functionHeaderFields {
		v := getBits(lo, hi, bit, f.width)
		bit += f.width
		switch f.name {
		case "offset":
			raw.offset = uint32(v)
		case "paramCount":
			raw.paramCount = uint32(v)
		case "bytecodeSizeInBytes":
			raw.bytecodeSizeInBytes = uint32(v)
		case "functionName":
			raw.functionName = uint32(v)
		case "infoOffset":
			raw.infoOffset = uint32(v)
		case "frameSize":
			raw.frameSize = uint32(v)
		case "environmentSize":
			raw.environmentSize = uint32(v)
		case "highestReadCacheIndex":
			raw.highestReadCacheIndex = uint32(v)
		case "highestWriteCacheIndex":
			raw.highestWriteCacheIndex = uint32(v)
		case "flags":
			raw.flags = uint32(v)
		}
	}
	return raw, nil
}

// encodeCompactFunctionHeader packs raw into the 16-byte compact slot at
// offset within buf. buf must already cover the range.
func encodeCompactFunctionHeader(buf []byte, offset uint32, raw rawFunctionHeader) error {
	if offset+compactFunctionHeaderSize > uint32(len(buf)) {
		return fmt.Errorf("encodeCompactFunctionHeader at %d: %w", offset, ErrOutsideBoundary)
	}
	var lo, hi uint64
	var bit uint
	for _, f := range functionHeaderFields {
		var v uint32
		switch f.name {
		case "offset":
			v = raw.offset
		case "paramCount":
			v = raw.paramCount
		case "bytecodeSizeInBytes":
			v = raw.bytecodeSizeInBytes
		case "functionName":
			v = raw.functionName
		case "infoOffset":
			v = raw.infoOffset
		case "frameSize":
			v = raw.frameSize
		case "environmentSize":
			v = raw.environmentSize
		case "highestReadCacheIndex":
			v = raw.highestReadCacheIndex
		case "highestWriteCacheIndex":
			v = raw.highestWriteCacheIndex
		case "flags":
			v = raw.flags
		}
		setBits(&lo, &hi, bit, f.width, uint64(v))
		bit += f.width
	}
	binary.LittleEndian.PutUint64(buf[offset:offset+8], lo)
	binary.LittleEndian.PutUint64(buf[offset+8:offset+16], hi)
	return nil
}

// decodeLargeFunctionHeader unpacks the 40-byte overflow record at offset:
// the same ten fields as the compact slot, each a plain little-endian
// uint32, in the same order.
func decodeLargeFunctionHeader(buf []byte, offset uint32) (rawFunctionHeader, error) {
	slot, err := readBytes(buf, offset, largeFunctionHeaderSize)
	if err != nil {
		return rawFunctionHeader{}, fmt.Errorf("decodeLargeFunctionHeader: %w", err)
	}
	r := bytes.NewReader(slot)
	values := make([]uint32, len(functionHeaderFields))
	if err := binary.Read(r, binary.LittleEndian, &values); err != nil {
		return rawFunctionHeader{}, fmt.Errorf("decodeLargeFunctionHeader: %w", err)
	}
	return rawFunctionHeader{
		offset:                 values[0],
		paramCount:             values[1],
		bytecodeSizeInBytes:    values[2],
		functionName:           values[3],
		infoOffset:             values[4],
		frameSize:              values[5],
		environmentSize:        values[6],
		highestReadCacheIndex:  values[7],
		highestWriteCacheIndex: values[8],
		flags:                  values[9],
	}, nil
}

// encodeLargeFunctionHeader packs raw into the 40-byte overflow record at
// offset within buf.
func encodeLargeFunctionHeader(buf []byte, offset uint32, raw rawFunctionHeader) error {
	if offset+largeFunctionHeaderSize > uint32(len(buf)) {
		return fmt.Errorf("encodeLargeFunctionHeader at %d: %w", offset, ErrOutsideBoundary)
	}
	values := []uint32{
		raw.offset, raw.paramCount, raw.bytecodeSizeInBytes, raw.functionName,
		raw.infoOffset, raw.frameSize, raw.environmentSize,
		raw.highestReadCacheIndex, raw.highestWriteCacheIndex, raw.flags,
	}
	w := new(bytes.Buffer)
	w.Grow(largeFunctionHeaderSize)
	if err := binary.Write(w, binary.LittleEndian, values); err != nil {
		return fmt.Errorf("encodeLargeFunctionHeader: %w", err)
	}
	copy(buf[offset:offset+largeFunctionHeaderSize], w.Bytes())
	return nil
}
