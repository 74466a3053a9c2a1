// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import (
	"encoding/hex"
	"fmt"
	"unicode/utf8"
)

// resolveStringSlot follows e's overflow indirection (if any) and returns
// the actual (offset, length, isUTF16) slot in stringStorage it describes
// (spec §4.3).
func (c *Container) resolveStringSlot(e StringTableEntry) (offset, length uint32, isUTF16 bool, err error) {
	if e.Length != c.layout.invalidLength() {
		return e.Offset, e.Length, e.IsUTF16, nil
	}
	idx := e.Offset
	if idx >= uint32(len(c.StringTableOverflowEntries)) {
		return 0, 0, false, fmt.Errorf("string table overflow index %d: %w", idx, ErrMalformed)
	}
	overflow := c.StringTableOverflowEntries[idx]
	return overflow.Offset, overflow.Length, e.IsUTF16, nil
}

// GetString returns the string at sid along with the slot it was decoded
// from (spec §4.3). UTF-16 slots are returned as a lowercase hex dump of
// their raw bytes, never decoded; non-UTF-16 slots are decoded as UTF-8,
// failing with ErrEncoding if the bytes aren't valid UTF-8.
func (c *Container) GetString(sid int) (text string, slot StringTableEntry, err error) {
	if sid < 0 || sid >= len(c.StringTableEntries) {
		return "", StringTableEntry{}, fmt.Errorf("string id %d: %w", sid, ErrInvalidID)
	}
	e := c.StringTableEntries[sid]
	offset, length, isUTF16, err := c.resolveStringSlot(e)
	if err != nil {
		return "", StringTableEntry{}, err
	}
	resolved := StringTableEntry{IsUTF16: isUTF16, Offset: offset, Length: length}

	byteLen := length
	if isUTF16 {
		byteLen *= 2
	}
	raw, err := readBytes(c.stringStorage, offset, byteLen)
	if err != nil {
		return "", StringTableEntry{}, fmt.Errorf("string id %d: %w", sid, err)
	}

	if isUTF16 {
		return hex.EncodeToString(raw), resolved, nil
	}
	if !utf8.Valid(raw) {
		return "", StringTableEntry{}, fmt.Errorf("string id %d: %w", sid, ErrEncoding)
	}
	return string(raw), resolved, nil
}

// SetString overwrites the string at sid with value (spec §4.3). For
// UTF-16 slots, value must be an even-length hex string whose decoded byte
// length does not exceed the slot's byte length; for other slots, value is
// encoded as UTF-8 and must not exceed the slot's length in code points.
// Growth beyond the original slot length is rejected with
// ErrOverflowUnsupported; shrinkage is permitted and unused trailing bytes
// are left untouched (spec §9 "String length shrinkage").
func (c *Container) SetString(sid int, value string) error {
	if sid < 0 || sid >= len(c.StringTableEntries) {
		return fmt.Errorf("string id %d: %w", sid, ErrInvalidID)
	}
	e := c.StringTableEntries[sid]
	offset, length, isUTF16, err := c.resolveStringSlot(e)
	if err != nil {
		return err
	}

	var bytesToWrite []byte
	if isUTF16 {
		decoded, err := hex.DecodeString(value)
		if err != nil {
			return fmt.Errorf("string id %d: invalid hex value: %w", sid, err)
		}
		if uint32(len(decoded)) > length*2 {
			return fmt.Errorf("string id %d: %w", sid, ErrOverflowUnsupported)
		}
		bytesToWrite = decoded
	} else {
		encoded := []byte(value)
		if uint32(utf8.RuneCountInString(value)) > length {
			return fmt.Errorf("string id %d: %w", sid, ErrOverflowUnsupported)
		}
		bytesToWrite = encoded
	}

	return writeBytes(c.stringStorage, offset, bytesToWrite)
}
