// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import "fmt"

// versionLayout captures the handful of places where HBC versions 86 and 96
// diverge: the bit widths of a string-table entry's packed offset/length
// pair (and therefore its INVALID_LENGTH sentinel), and the size of the
// file header's trailing reserved region. Everything else -- the function
// header's compact/overflow encoding, the SLP tag format, the table
// ordering -- is identical across versions and handled by a single
// implementation (spec §9, "version unification").
type versionLayout struct {
	version uint32

	// stringOffsetBits + stringLengthBits + 1 (the isUTF16 bit) == 32: the
	// packed width of one StringTableEntries slot.
	stringOffsetBits uint
	stringLengthBits uint

	// fileHeaderReservedSize is the width, in bytes, of the opaque reserved
	// region following the modeled file header fields: source hash and
	// other fields this core does not model.
	fileHeaderReservedSize uint32
}

// invalidLength is the version-specific sentinel value a string-table
// entry's length field holds when the real (offset, length) pair must be
// looked up in the overflow table instead.
func (v versionLayout) invalidLength() uint32 {
	return uint32(1)<<v.stringLengthBits - 1
}

// maxStringOffset is the largest in-line offset a non-overflowed string
// table entry can encode directly.
func (v versionLayout) maxStringOffset() uint32 {
	return uint32(1)<<v.stringOffsetBits - 1
}

var versionLayouts = map[uint32]versionLayout{
	86: {version: 86, stringOffsetBits: 23, stringLengthBits: 8, fileHeaderReservedSize: 16},
	96: {version: 96, stringOffsetBits: 22, stringLengthBits: 9, fileHeaderReservedSize: 24},
}

// lookupVersionLayout returns the layout for a supported HBC version, or
// ErrUnsupportedVersion.
func lookupVersionLayout(version uint32) (versionLayout, error) {
	layout, ok := versionLayouts[version]
	if !ok {
		return versionLayout{}, fmt.Errorf("version %d: %w", version, ErrUnsupportedVersion)
	}
	return layout, nil
}
