// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import "fmt"

// Export serializes c back to bytes (spec §4.5): the file header (with any
// updated counts), the function headers (compact slot plus overflow
// records, via the header codec), then every raw buffer at its stored
// offset, finally the opaque trailer. Every buffer is written at its
// recorded offset. Bytes between regions that no modeled table, buffer or
// trailer covers are not captured by Parse; Export writes them as zeros.
func (c *Container) Export() ([]byte, error) {
	hdr := c.Header
	hdr.FunctionCount = uint32(len(c.FunctionHeaders))
	hdr.StringCount = uint32(len(c.StringTableEntries))
	hdr.OverflowStringCount = uint32(len(c.StringTableOverflowEntries))
	hdr.StringStorageSize = uint32(len(c.stringStorage))
	hdr.ArrayBufferSize = uint32(len(c.arrayBuffer))
	hdr.ObjKeyBufferSize = uint32(len(c.objKeyBuffer))
	hdr.ObjValueBufferSize = uint32(len(c.objValueBuffer))
	hdr.InstBufferSize = uint32(len(c.instBuffer))

	overflowCount := uint32(0)
	for i := range c.FunctionHeaders {
		if c.FunctionHeaders[i].small != nil {
			overflowCount++
		}
	}

	total := hdr.InstOffset + hdr.InstBufferSize
	for _, end := range []uint32{
		hdr.StringStorageOffset + hdr.StringStorageSize,
		hdr.ArrayBufferOffset + hdr.ArrayBufferSize,
		hdr.ObjKeyBufferOffset + hdr.ObjKeyBufferSize,
		hdr.ObjValueBufferOffset + hdr.ObjValueBufferSize,
		hdr.FunctionHeadersOffset + hdr.FunctionCount*compactFunctionHeaderSize,
		hdr.FunctionHeadersOverflowOffset + overflowCount*largeFunctionHeaderSize,
		hdr.StringTableOffset + hdr.StringCount*stringTableEntrySize,
		hdr.StringTableOverflowOffset + hdr.OverflowStringCount*stringTableOverflowEntrySize,
	} {
		if end > total {
			total = end
		}
	}
	total += uint32(len(c.trailer))
	hdr.FileLength = total

	out := make([]byte, total)

	if err := encodeFileHeader(out, hdr, c.layout); err != nil {
		return nil, fmt.Errorf("export file header: %w", err)
	}

	overflowIdx := uint32(0)
	for i, fh := range c.FunctionHeaders {
		slotOffset := hdr.FunctionHeadersOffset + uint32(i)*compactFunctionHeaderSize
		if fh.small == nil {
			raw := rawFunctionHeader{
				offset:                 fh.Offset,
				paramCount:             fh.ParamCount,
				bytecodeSizeInBytes:    fh.BytecodeSizeInBytes,
				functionName:           fh.FunctionName,
				infoOffset:             fh.InfoOffset,
				frameSize:              fh.FrameSize,
				environmentSize:        fh.EnvironmentSize,
				highestReadCacheIndex:  fh.HighestReadCacheIndex,
				highestWriteCacheIndex: fh.HighestWriteCacheIndex,
				flags:                  fh.Flags,
			}
			if err := encodeCompactFunctionHeader(out, slotOffset, raw); err != nil {
				return nil, fmt.Errorf("export function %d: %w", i, err)
			}
			continue
		}

		small := rawFunctionHeader{
			offset:                 fh.small.offset,
			paramCount:             fh.small.paramCount,
			bytecodeSizeInBytes:    fh.small.bytecodeSizeInBytes,
			functionName:           fh.small.functionName,
			infoOffset:             fh.small.infoOffset,
			frameSize:              fh.small.frameSize,
			environmentSize:        fh.small.environmentSize,
			highestReadCacheIndex:  fh.small.highestReadCacheIndex,
			highestWriteCacheIndex: fh.small.highestWriteCacheIndex,
			flags:                  fh.small.flags,
		}
		if err := encodeCompactFunctionHeader(out, slotOffset, small); err != nil {
			return nil, fmt.Errorf("export function %d compact slot: %w", i, err)
		}

		full := rawFunctionHeader{
			offset:                 fh.Offset,
			paramCount:             fh.ParamCount,
			bytecodeSizeInBytes:    fh.BytecodeSizeInBytes,
			functionName:           fh.FunctionName,
			infoOffset:             fh.InfoOffset,
			frameSize:              fh.FrameSize,
			environmentSize:        fh.EnvironmentSize,
			highestReadCacheIndex:  fh.HighestReadCacheIndex,
			highestWriteCacheIndex: fh.HighestWriteCacheIndex,
			flags:                  fh.Flags,
		}
		largeOffset := hdr.FunctionHeadersOverflowOffset + overflowIdx*largeFunctionHeaderSize
		if err := encodeLargeFunctionHeader(out, largeOffset, full); err != nil {
			return nil, fmt.Errorf("export function %d overflow record: %w", i, err)
		}
		overflowIdx++
	}

	for i, e := range c.StringTableEntries {
		if err := encodeStringTableEntry(out, hdr.StringTableOffset+uint32(i)*stringTableEntrySize, e, c.layout); err != nil {
			return nil, fmt.Errorf("export string table entry %d: %w", i, err)
		}
	}
	for i, e := range c.StringTableOverflowEntries {
		if err := encodeStringTableOverflowEntry(out, hdr.StringTableOverflowOffset+uint32(i)*stringTableOverflowEntrySize, e); err != nil {
			return nil, fmt.Errorf("export string table overflow entry %d: %w", i, err)
		}
	}

	if err := writeBytes(out, hdr.StringStorageOffset, c.stringStorage); err != nil {
		return nil, fmt.Errorf("export string storage: %w", err)
	}
	if err := writeBytes(out, hdr.ArrayBufferOffset, c.arrayBuffer); err != nil {
		return nil, fmt.Errorf("export array buffer: %w", err)
	}
	if err := writeBytes(out, hdr.ObjKeyBufferOffset, c.objKeyBuffer); err != nil {
		return nil, fmt.Errorf("export objkey buffer: %w", err)
	}
	if err := writeBytes(out, hdr.ObjValueBufferOffset, c.objValueBuffer); err != nil {
		return nil, fmt.Errorf("export objvalue buffer: %w", err)
	}
	if err := writeBytes(out, hdr.InstOffset, c.instBuffer); err != nil {
		return nil, fmt.Errorf("export inst buffer: %w", err)
	}
	if len(c.trailer) > 0 {
		if err := writeBytes(out, total-uint32(len(c.trailer)), c.trailer); err != nil {
			return nil, fmt.Errorf("export trailer: %w", err)
		}
	}

	return out, nil
}
