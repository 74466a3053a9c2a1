// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import (
	"errors"
	"testing"
)

func TestLookupVersionLayoutKnownVersions(t *testing.T) {
	for _, v := range []uint32{86, 96} {
		layout, err := lookupVersionLayout(v)
		if err != nil {
			t.Fatalf("lookupVersionLayout(%d): %v", v, err)
		}
		if layout.version != v {
			t.Fatalf("layout.version = %d, want %d", layout.version, v)
		}
		if layout.stringOffsetBits+layout.stringLengthBits != 31 {
			t.Fatalf("version %d: offset+length bits = %d, want 31 (+1 isUTF16 bit == 32)",
				v, layout.stringOffsetBits+layout.stringLengthBits)
		}
	}
}

func TestLookupVersionLayoutUnsupported(t *testing.T) {
	_, err := lookupVersionLayout(70)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestInvalidLengthIsUnreachableByValidLength(t *testing.T) {
	layout86, _ := lookupVersionLayout(86)
	if layout86.invalidLength() != 255 {
		t.Fatalf("v86 invalidLength = %d, want 255", layout86.invalidLength())
	}
	layout96, _ := lookupVersionLayout(96)
	if layout96.invalidLength() != 511 {
		t.Fatalf("v96 invalidLength = %d, want 511", layout96.invalidLength())
	}
}
