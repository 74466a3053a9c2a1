// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import (
	"bytes"
	"testing"
)

func TestPassthroughTranslatorRoundTrip(t *testing.T) {
	tr := passthroughTranslator{}
	bc := []byte{0x01, 0x02, 0x03, 0x04}

	insts, err := tr.Disassemble(bc)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if len(insts) != 1 {
		t.Fatalf("len(insts) = %d, want 1", len(insts))
	}

	out, err := tr.Assemble(insts)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !bytes.Equal(out, bc) {
		t.Fatalf("Assemble(Disassemble(bc)) = %v, want %v", out, bc)
	}
}

func TestGetFunctionDisassembleTrue(t *testing.T) {
	c := newFixtureContainer(t)
	payload, err := c.GetFunction(0, true)
	if err != nil {
		t.Fatalf("GetFunction: %v", err)
	}
	insts, ok := payload.Insts.([]Inst)
	if !ok {
		t.Fatalf("Insts type = %T, want []Inst", payload.Insts)
	}
	if len(insts) != 1 || len(insts[0].Operands) != 100 {
		t.Fatalf("unexpected disassembly shape: %+v", insts)
	}
}

func TestSetFunctionWithStructuredInsts(t *testing.T) {
	c := newFixtureContainer(t)
	fh := c.FunctionHeaders[0]
	insts := []Inst{{Opcode: 0, Operands: []byte{0xAA, 0xBB, 0xCC}}}

	err := c.SetFunction(0, FunctionPayload{ParamCount: fh.ParamCount, RegisterCount: fh.FrameSize, SymbolCount: fh.EnvironmentSize, Insts: insts}, true)
	if err != nil {
		t.Fatalf("SetFunction: %v", err)
	}
	if c.FunctionHeaders[0].BytecodeSizeInBytes != 3 {
		t.Fatalf("bytecodeSizeInBytes = %d, want 3", c.FunctionHeaders[0].BytecodeSizeInBytes)
	}
}
