// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// rawFileHeader is the on-disk, byte-aligned shape of FileHeader, decoded
// via binary.Read in the usual structUnpack idiom: every field is a plain
// little-endian uint32 following an 8-byte magic, so no bit-packing is
// needed here (unlike the function header compact slot).
type rawFileHeader struct {
	Magic uint64

	Version uint32

	FunctionCount       uint32
	StringCount         uint32
	OverflowStringCount uint32

	StringStorageSize  uint32
	ArrayBufferSize    uint32
	ObjKeyBufferSize   uint32
	ObjValueBufferSize uint32
	InstBufferSize     uint32

	InstOffset                    uint32
	FunctionHeadersOffset         uint32
	FunctionHeadersOverflowOffset uint32
	StringTableOffset             uint32
	StringTableOverflowOffset     uint32
	StringStorageOffset           uint32
	ArrayBufferOffset             uint32
	ObjKeyBufferOffset            uint32
	ObjValueBufferOffset          uint32

	FileLength uint32
}

// decodeFileHeader reads the file header at the start of buf, including its
// version-specific reserved tail. The tail's size comes from the layout
// looked up for the decoded Version, which is also returned.
func decodeFileHeader(buf []byte) (FileHeader, versionLayout, error) {
	if uint32(len(buf)) < rawFileHeaderSize {
		return FileHeader{}, versionLayout{}, fmt.Errorf("file shorter than header: %w", ErrMalformed)
	}
	var raw rawFileHeader
	r := bytes.NewReader(buf[:rawFileHeaderSize])
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return FileHeader{}, versionLayout{}, fmt.Errorf("decodeFileHeader: %w", err)
	}
	if raw.Magic != hbcMagic {
		return FileHeader{}, versionLayout{}, fmt.Errorf("bad magic: %w", ErrMalformed)
	}
	layout, err := lookupVersionLayout(raw.Version)
	if err != nil {
		return FileHeader{}, versionLayout{}, err
	}

	reservedStart := uint32(rawFileHeaderSize)
	reserved, err := readBytes(buf, reservedStart, layout.fileHeaderReservedSize)
	if err != nil {
		return FileHeader{}, versionLayout{}, fmt.Errorf("decodeFileHeader reserved tail: %w", err)
	}

	hdr := FileHeader{
		Version:                       raw.Version,
		FunctionCount:                 raw.FunctionCount,
		StringCount:                   raw.StringCount,
		OverflowStringCount:           raw.OverflowStringCount,
		StringStorageSize:             raw.StringStorageSize,
		ArrayBufferSize:               raw.ArrayBufferSize,
		ObjKeyBufferSize:              raw.ObjKeyBufferSize,
		ObjValueBufferSize:            raw.ObjValueBufferSize,
		InstBufferSize:                raw.InstBufferSize,
		InstOffset:                    raw.InstOffset,
		FunctionHeadersOffset:         raw.FunctionHeadersOffset,
		FunctionHeadersOverflowOffset: raw.FunctionHeadersOverflowOffset,
		StringTableOffset:             raw.StringTableOffset,
		StringTableOverflowOffset:     raw.StringTableOverflowOffset,
		StringStorageOffset:           raw.StringStorageOffset,
		ArrayBufferOffset:             raw.ArrayBufferOffset,
		ObjKeyBufferOffset:            raw.ObjKeyBufferOffset,
		ObjValueBufferOffset:          raw.ObjValueBufferOffset,
		FileLength:                    raw.FileLength,
		reserved:                      append([]byte(nil), reserved...),
	}
	return hdr, layout, nil
}

// fileHeaderSize returns the total on-disk size of the file header region
// for layout, fixed part plus version-specific reserved tail.
func fileHeaderSize(layout versionLayout) uint32 {
	return rawFileHeaderSize + layout.fileHeaderReservedSize
}

// encodeFileHeader serializes hdr into buf[0:fileHeaderSize(layout)]. buf
// must already cover that range.
func encodeFileHeader(buf []byte, hdr FileHeader, layout versionLayout) error {
	raw := rawFileHeader{
		Magic:                         hbcMagic,
		Version:                       hdr.Version,
		FunctionCount:                 hdr.FunctionCount,
		StringCount:                   hdr.StringCount,
		OverflowStringCount:           hdr.OverflowStringCount,
		StringStorageSize:             hdr.StringStorageSize,
		ArrayBufferSize:               hdr.ArrayBufferSize,
		ObjKeyBufferSize:              hdr.ObjKeyBufferSize,
		ObjValueBufferSize:            hdr.ObjValueBufferSize,
		InstBufferSize:                hdr.InstBufferSize,
		InstOffset:                    hdr.InstOffset,
		FunctionHeadersOffset:         hdr.FunctionHeadersOffset,
		FunctionHeadersOverflowOffset: hdr.FunctionHeadersOverflowOffset,
		StringTableOffset:             hdr.StringTableOffset,
		StringTableOverflowOffset:     hdr.StringTableOverflowOffset,
		StringStorageOffset:           hdr.StringStorageOffset,
		ArrayBufferOffset:             hdr.ArrayBufferOffset,
		ObjKeyBufferOffset:            hdr.ObjKeyBufferOffset,
		ObjValueBufferOffset:          hdr.ObjValueBufferOffset,
		FileLength:                    hdr.FileLength,
	}
	w := new(bytes.Buffer)
	w.Grow(rawFileHeaderSize)
	if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
		return fmt.Errorf("encodeFileHeader: %w", err)
	}
	if err := writeBytes(buf, 0, w.Bytes()); err != nil {
		return err
	}
	reserved := hdr.reserved
	if uint32(len(reserved)) != layout.fileHeaderReservedSize {
		reserved = growBuffer(append([]byte(nil), reserved...), layout.fileHeaderReservedSize)
	}
	return writeBytes(buf, rawFileHeaderSize, reserved)
}

// decodeStringTableEntry unpacks one packed 4-byte slot of
// StringTableEntries at offset, per layout's bit widths.
func decodeStringTableEntry(buf []byte, offset uint32, layout versionLayout) (StringTableEntry, error) {
	word, err := readUint32(buf, offset)
	if err != nil {
		return StringTableEntry{}, fmt.Errorf("decodeStringTableEntry: %w", err)
	}
	isUTF16 := word&1 != 0
	off := (word >> 1) & (uint32(1)<<layout.stringOffsetBits - 1)
	length := (word >> (1 + layout.stringOffsetBits)) & (uint32(1)<<layout.stringLengthBits - 1)
	return StringTableEntry{IsUTF16: isUTF16, Offset: off, Length: length}, nil
}

// encodeStringTableEntry packs e into the 4-byte slot at offset.
func encodeStringTableEntry(buf []byte, offset uint32, e StringTableEntry, layout versionLayout) error {
	var word uint32
	if e.IsUTF16 {
		word |= 1
	}
	word |= (e.Offset & (uint32(1)<<layout.stringOffsetBits - 1)) << 1
	word |= (e.Length & (uint32(1)<<layout.stringLengthBits - 1)) << (1 + layout.stringOffsetBits)
	return writeUint32(buf, offset, word)
}

// decodeStringTableOverflowEntry unpacks one 8-byte overflow entry at offset.
func decodeStringTableOverflowEntry(buf []byte, offset uint32) (StringTableOverflowEntry, error) {
	off, err := readUint32(buf, offset)
	if err != nil {
		return StringTableOverflowEntry{}, fmt.Errorf("decodeStringTableOverflowEntry: %w", err)
	}
	length, err := readUint32(buf, offset+4)
	if err != nil {
		return StringTableOverflowEntry{}, fmt.Errorf("decodeStringTableOverflowEntry: %w", err)
	}
	return StringTableOverflowEntry{Offset: off, Length: length}, nil
}

// encodeStringTableOverflowEntry packs e into the 8-byte slot at offset.
func encodeStringTableOverflowEntry(buf []byte, offset uint32, e StringTableOverflowEntry) error {
	if err := writeUint32(buf, offset, e.Offset); err != nil {
		return err
	}
	return writeUint32(buf, offset+4, e.Length)
}

const stringTableEntrySize = 4
const stringTableOverflowEntrySize = 8
