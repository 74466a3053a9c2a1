// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import (
	"errors"
	"testing"
)

func TestValidateInvariantsHoldsForFixture(t *testing.T) {
	c := newFixtureContainer(t)
	if err := c.validateInvariants(); err != nil {
		t.Fatalf("validateInvariants: %v", err)
	}
}

func TestValidateInvariantsCatchesFunctionCountMismatch(t *testing.T) {
	c := newFixtureContainer(t)
	c.Header.FunctionCount++
	if err := c.validateInvariants(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestValidateInvariantsCatchesFlagSmallDisagreement(t *testing.T) {
	c := newFixtureContainer(t)
	c.FunctionHeaders[0].Flags |= 1 << overflowedFlagBit // set flag without a small record
	if err := c.validateInvariants(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestValidateInvariantsCatchesOutOfRangeBytecode(t *testing.T) {
	c := newFixtureContainer(t)
	c.FunctionHeaders[1].BytecodeSizeInBytes = 10000 // runs past instBuffer's end
	if err := c.validateInvariants(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestValidateInvariantsCatchesStringOutOfRange(t *testing.T) {
	c := newFixtureContainer(t)
	c.StringTableEntries[0].Length = 1000
	if err := c.validateInvariants(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestParseValidatesInvariantsByDefault(t *testing.T) {
	c := newFixtureContainer(t)
	c.Header.StringCount = 999 // declared count no longer matches the table
	data, err := c.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	// Export recomputes StringCount from the live table, so corrupt the
	// exported bytes' header field directly instead.
	if err := writeUint32(data, 8+4*2, 999); err != nil {
		t.Fatalf("writeUint32: %v", err)
	}
	_, err = Parse(data, &Options{})
	if err == nil {
		t.Fatalf("expected Parse to fail invariant validation")
	}
}

func TestParseSkipInvariantsAcceptsMalformedInput(t *testing.T) {
	c := newFixtureContainer(t)
	c.Header.StringCount = 999
	data, err := c.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := writeUint32(data, 8+4*2, 999); err != nil {
		t.Fatalf("writeUint32: %v", err)
	}
	if _, err := Parse(data, &Options{SkipInvariants: true}); err != nil {
		t.Fatalf("expected Parse with SkipInvariants to succeed, got %v", err)
	}
}
