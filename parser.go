// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import "fmt"

// Parse consumes a byte stream and materializes a Container (spec §4.5).
// It copies every table and raw buffer into owned, mutable storage and, by
// default, validates every §3 invariant before returning; pass
// Options.SkipInvariants to opt out.
func Parse(data []byte, opts *Options) (*Container, error) {
	c := newContainer(opts)

	hdr, layout, err := decodeFileHeader(data)
	if err != nil {
		return nil, err
	}
	c.Header = hdr
	c.layout = layout
	c.logger.Debugf("parsed file header: version=%d functions=%d strings=%d", hdr.Version, hdr.FunctionCount, hdr.StringCount)

	if err := c.parseFunctionHeaders(data); err != nil {
		return nil, err
	}
	if err := c.parseStringTables(data); err != nil {
		return nil, err
	}
	if err := c.parseBuffers(data); err != nil {
		return nil, err
	}
	c.parseTrailer(data)
	if len(c.trailer) > 0 {
		c.logger.Debugf("captured %d trailing bytes beyond the last modeled buffer", len(c.trailer))
	}

	if !c.opts.SkipInvariants {
		if err := c.validateInvariants(); err != nil {
			c.logger.Errorf("invariant validation failed: %v", err)
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) parseFunctionHeaders(data []byte) error {
	n := c.Header.FunctionCount
	headers := make([]FunctionHeader, 0, n)
	overflowIdx := uint32(0)
	for i := uint32(0); i < n; i++ {
		slotOffset := c.Header.FunctionHeadersOffset + i*compactFunctionHeaderSize
		compact, err := decodeCompactFunctionHeader(data, slotOffset)
		if err != nil {
			return fmt.Errorf("function header %d: %w", i, err)
		}

		if compact.flags&(1<<overflowedFlagBit) == 0 {
			headers = append(headers, FunctionHeader{
				Offset:                 compact.offset,
				ParamCount:             compact.paramCount,
				BytecodeSizeInBytes:    compact.bytecodeSizeInBytes,
				FunctionName:           compact.functionName,
				InfoOffset:             compact.infoOffset,
				FrameSize:              compact.frameSize,
				EnvironmentSize:        compact.environmentSize,
				HighestReadCacheIndex:  compact.highestReadCacheIndex,
				HighestWriteCacheIndex: compact.highestWriteCacheIndex,
				Flags:                  compact.flags,
			})
			continue
		}

		largeOffset := c.Header.FunctionHeadersOverflowOffset + overflowIdx*largeFunctionHeaderSize
		large, err := decodeLargeFunctionHeader(data, largeOffset)
		if err != nil {
			return fmt.Errorf("function header %d overflow record %d: %w", i, overflowIdx, err)
		}
		overflowIdx++

		headers = append(headers, FunctionHeader{
			Offset:                 large.offset,
			ParamCount:             large.paramCount,
			BytecodeSizeInBytes:    large.bytecodeSizeInBytes,
			FunctionName:           large.functionName,
			InfoOffset:             large.infoOffset,
			FrameSize:              large.frameSize,
			EnvironmentSize:        large.environmentSize,
			HighestReadCacheIndex:  large.highestReadCacheIndex,
			HighestWriteCacheIndex: large.highestWriteCacheIndex,
			Flags:                  large.flags,
			small: &smallFunctionHeader{
				offset:                 compact.offset,
				paramCount:             compact.paramCount,
				bytecodeSizeInBytes:    compact.bytecodeSizeInBytes,
				functionName:           compact.functionName,
				infoOffset:             compact.infoOffset,
				frameSize:              compact.frameSize,
				environmentSize:        compact.environmentSize,
				highestReadCacheIndex:  compact.highestReadCacheIndex,
				highestWriteCacheIndex: compact.highestWriteCacheIndex,
				flags:                  compact.flags,
			},
		})
	}
	c.FunctionHeaders = headers
	c.functionHeaderOverflowCount = overflowIdx
	return nil
}

func (c *Container) parseStringTables(data []byte) error {
	n := c.Header.StringCount
	entries := make([]StringTableEntry, 0, n)
	for i := uint32(0); i < n; i++ {
		e, err := decodeStringTableEntry(data, c.Header.StringTableOffset+i*stringTableEntrySize, c.layout)
		if err != nil {
			return fmt.Errorf("string table entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	c.StringTableEntries = entries

	m := c.Header.OverflowStringCount
	overflow := make([]StringTableOverflowEntry, 0, m)
	for i := uint32(0); i < m; i++ {
		e, err := decodeStringTableOverflowEntry(data, c.Header.StringTableOverflowOffset+i*stringTableOverflowEntrySize)
		if err != nil {
			return fmt.Errorf("string table overflow entry %d: %w", i, err)
		}
		overflow = append(overflow, e)
	}
	c.StringTableOverflowEntries = overflow
	return nil
}

func (c *Container) parseBuffers(data []byte) error {
	stringStorage, err := readBytes(data, c.Header.StringStorageOffset, c.Header.StringStorageSize)
	if err != nil {
		return fmt.Errorf("string storage: %w", err)
	}
	c.stringStorage = append([]byte(nil), stringStorage...)

	arrayBuffer, err := readBytes(data, c.Header.ArrayBufferOffset, c.Header.ArrayBufferSize)
	if err != nil {
		return fmt.Errorf("array buffer: %w", err)
	}
	c.arrayBuffer = append([]byte(nil), arrayBuffer...)

	objKeyBuffer, err := readBytes(data, c.Header.ObjKeyBufferOffset, c.Header.ObjKeyBufferSize)
	if err != nil {
		return fmt.Errorf("objkey buffer: %w", err)
	}
	c.objKeyBuffer = append([]byte(nil), objKeyBuffer...)

	objValueBuffer, err := readBytes(data, c.Header.ObjValueBufferOffset, c.Header.ObjValueBufferSize)
	if err != nil {
		return fmt.Errorf("objvalue buffer: %w", err)
	}
	c.objValueBuffer = append([]byte(nil), objValueBuffer...)

	instBuffer, err := readBytes(data, c.Header.InstOffset, c.Header.InstBufferSize)
	if err != nil {
		return fmt.Errorf("inst buffer: %w", err)
	}
	c.instBuffer = append([]byte(nil), instBuffer...)
	return nil
}

// parseTrailer captures any bytes after the last modeled buffer's declared
// end, up to EOF, so export can reproduce them verbatim.
func (c *Container) parseTrailer(data []byte) {
	end := c.Header.InstOffset + c.Header.InstBufferSize
	for _, e := range [][2]uint32{
		{c.Header.StringStorageOffset, c.Header.StringStorageSize},
		{c.Header.ArrayBufferOffset, c.Header.ArrayBufferSize},
		{c.Header.ObjKeyBufferOffset, c.Header.ObjKeyBufferSize},
		{c.Header.ObjValueBufferOffset, c.Header.ObjValueBufferSize},
	} {
		if regionEnd := e[0] + e[1]; regionEnd > end {
			end = regionEnd
		}
	}
	if functionTableEnd := c.Header.FunctionHeadersOffset + c.Header.FunctionCount*compactFunctionHeaderSize; functionTableEnd > end {
		end = functionTableEnd
	}
	if overflowTableEnd := c.Header.FunctionHeadersOverflowOffset + c.functionHeaderOverflowCount*largeFunctionHeaderSize; overflowTableEnd > end {
		end = overflowTableEnd
	}
	if stringTableEnd := c.Header.StringTableOffset + c.Header.StringCount*stringTableEntrySize; stringTableEnd > end {
		end = stringTableEnd
	}
	if stringOverflowEnd := c.Header.StringTableOverflowOffset + c.Header.OverflowStringCount*stringTableOverflowEntrySize; stringOverflowEnd > end {
		end = stringOverflowEnd
	}
	if end < uint32(len(data)) {
		c.trailer = append([]byte(nil), data[end:]...)
	}
}
