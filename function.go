// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import "fmt"

// FunctionPayload is the tuple GetFunction returns and SetFunction accepts
// (spec §4.1). Insts holds []byte when disasm is false, or []Inst when
// disasm is true.
type FunctionPayload struct {
	Name          string
	ParamCount    uint32
	RegisterCount uint32 // frameSize
	SymbolCount   uint32 // environmentSize
	Insts         interface{}
	Header        *FunctionHeader
}

// GetFunction returns fid's name, parameter/register/symbol counts, and
// bytecode (spec §4.1). If disasm is true, Insts holds the disassembled
// []Inst produced by the configured BytecodeTranslator; otherwise it holds
// the raw []byte.
func (c *Container) GetFunction(fid int, disasm bool) (FunctionPayload, error) {
	if fid < 0 || fid >= len(c.FunctionHeaders) {
		return FunctionPayload{}, fmt.Errorf("function id %d: %w", fid, ErrInvalidID)
	}
	fh := &c.FunctionHeaders[fid]

	start := fh.Offset - c.Header.InstOffset
	bc, err := readBytes(c.instBuffer, start, fh.BytecodeSizeInBytes)
	if err != nil {
		return FunctionPayload{}, fmt.Errorf("function id %d: %w", fid, err)
	}
	bcCopy := append([]byte(nil), bc...)

	nameStr, _, err := c.GetString(int(fh.FunctionName))
	if err != nil {
		return FunctionPayload{}, fmt.Errorf("function id %d: name: %w", fid, err)
	}

	payload := FunctionPayload{
		Name:          nameStr,
		ParamCount:    fh.ParamCount,
		RegisterCount: fh.FrameSize,
		SymbolCount:   fh.EnvironmentSize,
		Header:        fh,
	}
	if !disasm {
		payload.Insts = bcCopy
		return payload, nil
	}
	structured, err := c.opts.Translator.Disassemble(bcCopy)
	if err != nil {
		return FunctionPayload{}, fmt.Errorf("function id %d: disassemble: %w", fid, err)
	}
	payload.Insts = structured
	return payload, nil
}

// SetFunction is the central edit operation (spec §4.1). name is accepted
// for interface symmetry with GetFunction but never applied: renaming a
// function is an explicit non-goal (spec §1) and is silently ignored.
//
// insts is either a []byte (verbatim bytecode, when disasm is false) or a
// []Inst (structured instructions to be assembled, when disasm is true).
func (c *Container) SetFunction(fid int, payload FunctionPayload, disasm bool) error {
	if fid < 0 || fid >= len(c.FunctionHeaders) {
		return fmt.Errorf("function id %d: %w", fid, ErrInvalidID)
	}

	var bc []byte
	switch v := payload.Insts.(type) {
	case []byte:
		bc = v
	case []Inst:
		assembled, err := c.opts.Translator.Assemble(v)
		if err != nil {
			return fmt.Errorf("function id %d: assemble: %w", fid, err)
		}
		bc = assembled
	default:
		if disasm {
			return fmt.Errorf("function id %d: disasm=true requires []Inst payload", fid)
		}
		return fmt.Errorf("function id %d: payload.Insts must be []byte or []Inst", fid)
	}

	fh := &c.FunctionHeaders[fid]
	start := fh.Offset - c.Header.InstOffset
	original := fh.BytecodeSizeInBytes
	newSize := uint32(len(bc))

	if c.opts.ValidateNonRelocating {
		if violatesNonRelocation(c.FunctionHeaders, fid, start, newSize) {
			return fmt.Errorf("function id %d: grown bytecode would overwrite next function: %w", fid, ErrOverflowUnsupported)
		}
	}

	// Stage every field update before touching any buffer, so a failure
	// partway through never leaves the container partially mutated (spec §7).
	needed := start + newSize
	newInstBuffer := c.instBuffer
	if needed > uint32(len(newInstBuffer)) {
		newInstBuffer = growBuffer(newInstBuffer, needed)
	}

	updated := *fh
	updated.ParamCount = payload.ParamCount
	updated.FrameSize = payload.RegisterCount
	updated.EnvironmentSize = payload.SymbolCount

	if newSize > maxSmallBytecodeSize {
		updated.Flags |= 1 << overflowedFlagBit
		small := fh.small
		if small == nil {
			// The compact slot is frozen at the moment of the first
			// overflow transition and never touched again: a later
			// overflow-path edit must not re-derive it from the
			// (already-overflowed) current size.
			small = &smallFunctionHeader{
				offset:                 fh.Offset,
				paramCount:             fh.ParamCount,
				bytecodeSizeInBytes:    minU32(original, maxSmallBytecodeSize),
				functionName:           fh.FunctionName,
				infoOffset:             fh.InfoOffset,
				frameSize:              fh.FrameSize,
				environmentSize:        fh.EnvironmentSize,
				highestReadCacheIndex:  fh.HighestReadCacheIndex,
				highestWriteCacheIndex: fh.HighestWriteCacheIndex,
				flags:                  updated.Flags,
			}
			c.logger.Debugf("function %d: bytecode grew to %d bytes, switching to overflow form", fid, newSize)
		}
		updated.small = small
		updated.BytecodeSizeInBytes = newSize
	} else {
		if fh.small != nil {
			c.logger.Debugf("function %d: bytecode shrank to %d bytes, switching back to compact form", fid, newSize)
		}
		updated.BytecodeSizeInBytes = newSize
		updated.Flags &^= 1 << overflowedFlagBit
		updated.small = nil
	}

	if err := writeBytes(newInstBuffer, start, bc); err != nil {
		return fmt.Errorf("function id %d: %w", fid, err)
	}

	// Commit.
	c.instBuffer = newInstBuffer
	*fh = updated
	return nil
}

// violatesNonRelocation reports whether growing fid's bytecode to newSize
// bytes (starting at start) would write into the next function's declared
// byte range, per ascending Offset (spec §9 open question, opt-in guard).
func violatesNonRelocation(headers []FunctionHeader, fid int, start, newSize uint32) bool {
	thisOffset := headers[fid].Offset
	var nextOffset uint32
	found := false
	for i, h := range headers {
		if i == fid {
			continue
		}
		if h.Offset > thisOffset && (!found || h.Offset < nextOffset) {
			nextOffset = h.Offset
			found = true
		}
	}
	if !found {
		return false
	}
	return thisOffset+newSize > nextOffset
}
