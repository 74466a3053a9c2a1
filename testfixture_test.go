// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

// newFixtureContainer builds a small, internally-consistent Container for
// version 86 with a handful of functions, strings, and SLP buffer groups.
// It lays out table offsets itself (rather than loading a real HBC file,
// none of which exist in this exercise's fixtures) so tests can exercise
// the full parse/export round trip against a container this package
// itself produced.
func newFixtureContainer(t interface{ Fatalf(string, ...interface{}) }) *Container {
	c := newContainer(&Options{})
	layout, err := lookupVersionLayout(86)
	if err != nil {
		t.Fatalf("lookupVersionLayout: %v", err)
	}
	c.layout = layout

	// String storage: three UTF-8 strings back to back.
	strs := []string{"main", "render", "onClick"}
	var storage []byte
	entries := make([]StringTableEntry, 0, len(strs))
	for _, s := range strs {
		entries = append(entries, StringTableEntry{IsUTF16: false, Offset: uint32(len(storage)), Length: uint32(len(s))})
		storage = append(storage, s...)
	}
	c.StringTableEntries = entries
	c.stringStorage = storage

	// Array buffer: a ShortStringTag group of 7 string-index elements.
	c.arrayBuffer = []byte{0x57, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00, 0x05, 0x00, 0x06, 0x00, 0x07, 0x00}
	c.objKeyBuffer = []byte{}
	c.objValueBuffer = []byte{}

	// Two functions, back to back in the instruction buffer, each 100 bytes.
	instBuffer := make([]byte, 200)
	for i := range instBuffer[:100] {
		instBuffer[i] = 0xAA
	}
	for i := range instBuffer[100:200] {
		instBuffer[100+i] = 0xBB
	}
	c.instBuffer = instBuffer

	const instOffset = uint32(0x1000)
	c.FunctionHeaders = []FunctionHeader{
		{
			Offset: instOffset, ParamCount: 1, BytecodeSizeInBytes: 100,
			FunctionName: 0, InfoOffset: 0, FrameSize: 4, EnvironmentSize: 0,
		},
		{
			Offset: instOffset + 100, ParamCount: 2, BytecodeSizeInBytes: 100,
			FunctionName: 1, InfoOffset: 0, FrameSize: 8, EnvironmentSize: 2,
		},
	}

	// Lay out file-level offsets.
	headerSize := fileHeaderSize(layout)
	fnHeadersOffset := headerSize
	fnOverflowOffset := fnHeadersOffset + uint32(len(c.FunctionHeaders))*compactFunctionHeaderSize
	stringTableOffset := fnOverflowOffset // no overflowed functions yet
	stringTableOverflowOffset := stringTableOffset + uint32(len(c.StringTableEntries))*stringTableEntrySize
	stringStorageOffset := stringTableOverflowOffset // no overflow string entries yet
	arrayBufferOffset := stringStorageOffset + uint32(len(c.stringStorage))
	objKeyBufferOffset := arrayBufferOffset + uint32(len(c.arrayBuffer))
	objValueBufferOffset := objKeyBufferOffset + uint32(len(c.objKeyBuffer))

	c.Header = FileHeader{
		Version:                       86,
		FunctionCount:                 uint32(len(c.FunctionHeaders)),
		StringCount:                   uint32(len(c.StringTableEntries)),
		OverflowStringCount:           0,
		StringStorageSize:             uint32(len(c.stringStorage)),
		ArrayBufferSize:               uint32(len(c.arrayBuffer)),
		ObjKeyBufferSize:              uint32(len(c.objKeyBuffer)),
		ObjValueBufferSize:            uint32(len(c.objValueBuffer)),
		InstBufferSize:                uint32(len(c.instBuffer)),
		InstOffset:                    instOffset,
		FunctionHeadersOffset:         fnHeadersOffset,
		FunctionHeadersOverflowOffset: fnOverflowOffset,
		StringTableOffset:             stringTableOffset,
		StringTableOverflowOffset:     stringTableOverflowOffset,
		StringStorageOffset:           stringStorageOffset,
		ArrayBufferOffset:             arrayBufferOffset,
		ObjKeyBufferOffset:            objKeyBufferOffset,
		ObjValueBufferOffset:          objValueBufferOffset,
		reserved:                      make([]byte, layout.fileHeaderReservedSize),
	}

	return c
}
