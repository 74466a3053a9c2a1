// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import (
	"reflect"
	"testing"
)

func TestDecodeTagNoExtension(t *testing.T) {
	// kind=ShortString(5)<<4=0x50, extension bit clear, count 7.
	buf := []byte{0x57}
	tag, err := decodeTag(buf, 0)
	if err != nil {
		t.Fatalf("decodeTag: %v", err)
	}
	if tag.kind != sltShortString {
		t.Fatalf("kind = %d, want sltShortString", tag.kind)
	}
	if tag.count != 7 {
		t.Fatalf("count = %d, want 7", tag.count)
	}
	if tag.headerSize != 1 {
		t.Fatalf("headerSize = %d, want 1", tag.headerSize)
	}
}

func TestDecodeTagWithExtension(t *testing.T) {
	// kind=Integer(7)<<4=0x70, extension bit set, high nibble 0x0, low byte 0x42.
	buf := []byte{0xF0, 0x42}
	tag, err := decodeTag(buf, 0)
	if err != nil {
		t.Fatalf("decodeTag: %v", err)
	}
	if tag.kind != sltInteger {
		t.Fatalf("kind = %d, want sltInteger", tag.kind)
	}
	if tag.count != 0x42 {
		t.Fatalf("count = %d, want 0x42", tag.count)
	}
	if tag.headerSize != 2 {
		t.Fatalf("headerSize = %d, want 2", tag.headerSize)
	}
}

// TestGetArraySLPGroup is scenario 6: a ShortStringTag group of 7 elements.
func TestGetArraySLPGroup(t *testing.T) {
	c := newFixtureContainer(t)

	kind, values, err := c.GetArray(0)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	if kind != "String" {
		t.Fatalf("kind = %q, want String", kind)
	}
	got := IntValues(values)
	want := []uint32{1, 2, 3, 4, 5, 6, 7}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
}

func TestGetArrayInvalidID(t *testing.T) {
	c := newFixtureContainer(t)
	if _, _, err := c.GetArray(999); err == nil {
		t.Fatalf("expected error for out-of-range array id")
	}
}

func TestDecodeSLPPayloadEachKind(t *testing.T) {
	cases := []struct {
		name string
		kind sltKind
		buf  []byte
		want SLPValue
	}{
		{"null", sltNull, nil, SLPValue{Kind: "Null"}},
		{"true", sltTrue, nil, SLPValue{Kind: "Boolean", Boolean: true}},
		{"false", sltFalse, nil, SLPValue{Kind: "Boolean", Boolean: false}},
		{"byteString", sltByteString, []byte{0x2A}, SLPValue{Kind: "String", Str: 0x2A}},
		{"shortString", sltShortString, []byte{0x34, 0x12}, SLPValue{Kind: "String", Str: 0x1234}},
		{"longString", sltLongString, []byte{0x78, 0x56, 0x34, 0x12}, SLPValue{Kind: "String", Str: 0x12345678}},
		{"integer", sltInteger, []byte{0x01, 0x00, 0x00, 0x00}, SLPValue{Kind: "Integer", Int: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeSLPPayload(tc.buf, 0, tc.kind)
			if err != nil {
				t.Fatalf("decodeSLPPayload: %v", err)
			}
			if got != tc.want {
				t.Fatalf("decodeSLPPayload(%v) = %+v, want %+v", tc.kind, got, tc.want)
			}
		})
	}
}
