// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import "fmt"

// validateInvariants checks every cross-table invariant spec §3 requires to
// hold. Called by Parse, unless Options.SkipInvariants is set. SetFunction
// and SetString do not call it: they stage every field/buffer update and
// only commit once the staged write has succeeded, which is what actually
// keeps a failed mutation from leaving the container partially updated
// (spec §7) -- this function is a separate, optional post-parse check, not
// part of that commit path.
func (c *Container) validateInvariants() error {
	if uint32(len(c.FunctionHeaders)) != c.Header.FunctionCount {
		return fmt.Errorf("functionCount %d != len(functionHeaders) %d: %w",
			c.Header.FunctionCount, len(c.FunctionHeaders), ErrMalformed)
	}
	if uint32(len(c.StringTableEntries)) != c.Header.StringCount {
		return fmt.Errorf("stringCount %d != len(stringTableEntries) %d: %w",
			c.Header.StringCount, len(c.StringTableEntries), ErrMalformed)
	}
	if uint32(len(c.arrayBuffer)) != c.Header.ArrayBufferSize {
		return fmt.Errorf("arrayBufferSize mismatch: %w", ErrMalformed)
	}
	if uint32(len(c.objKeyBuffer)) != c.Header.ObjKeyBufferSize {
		return fmt.Errorf("objKeyBufferSize mismatch: %w", ErrMalformed)
	}
	if uint32(len(c.objValueBuffer)) != c.Header.ObjValueBufferSize {
		return fmt.Errorf("objValueBufferSize mismatch: %w", ErrMalformed)
	}

	for i := range c.FunctionHeaders {
		fh := &c.FunctionHeaders[i]

		overflowed := fh.Flags&(1<<overflowedFlagBit) != 0
		if overflowed != (fh.small != nil) {
			return fmt.Errorf("function %d: overflow flag disagrees with small record presence: %w", i, ErrMalformed)
		}
		if fh.small != nil {
			if fh.small.bytecodeSizeInBytes > maxSmallBytecodeSize {
				return fmt.Errorf("function %d: small.bytecodeSizeInBytes %d exceeds %d: %w",
					i, fh.small.bytecodeSizeInBytes, maxSmallBytecodeSize, ErrMalformed)
			}
			if fh.small.flags != fh.Flags {
				return fmt.Errorf("function %d: small.flags %#x != flags %#x: %w",
					i, fh.small.flags, fh.Flags, ErrMalformed)
			}
		}

		if fh.Offset < c.Header.InstOffset {
			return fmt.Errorf("function %d: offset %d before instOffset %d: %w",
				i, fh.Offset, c.Header.InstOffset, ErrMalformed)
		}
		start := fh.Offset - c.Header.InstOffset
		end := start + fh.BytecodeSizeInBytes
		if end < start || end > uint32(len(c.instBuffer)) {
			return fmt.Errorf("function %d: byte range [%d,%d) outside instBuffer (len %d): %w",
				i, start, end, len(c.instBuffer), ErrMalformed)
		}
	}

	for i, e := range c.StringTableEntries {
		off, length, isUTF16, err := c.resolveStringSlot(e)
		if err != nil {
			return fmt.Errorf("string %d: %w", i, err)
		}
		byteLen := length
		if isUTF16 {
			byteLen *= 2
		}
		endOff := off + byteLen
		if endOff < off || endOff > uint32(len(c.stringStorage)) {
			return fmt.Errorf("string %d: range [%d,%d) outside stringStorage (len %d): %w",
				i, off, endOff, len(c.stringStorage), ErrMalformed)
		}
	}

	return nil
}
