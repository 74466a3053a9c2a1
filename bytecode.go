// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

// Inst is one structured bytecode instruction, as produced by a
// BytecodeTranslator's Disassemble and consumed by its Assemble. The
// instruction set and encoding are defined by the Hermes opcode tables,
// which are out of this core's scope (spec §1, §6); this type is a
// deliberately opaque carrier so the core can be built and tested without
// them.
type Inst struct {
	Opcode   uint8
	Operands []byte
}

// BytecodeTranslator lifts a function's raw bytecode to a structured
// instruction sequence and lowers it back, losslessly (spec §6):
// Assemble(Disassemble(b)) == b for valid input. The real translator is a
// pure, table-driven opcode translator external to this core; this
// interface is the seam GetFunction/SetFunction call through.
type BytecodeTranslator interface {
	Disassemble(bc []byte) ([]Inst, error)
	Assemble(insts []Inst) ([]byte, error)
}

// passthroughTranslator is the default BytecodeTranslator: it treats raw
// bytecode as a single opaque instruction, satisfying the
// Assemble(Disassemble(b)) == b law trivially. Callers that need real
// disassembly supply their own BytecodeTranslator (the opcode tables
// themselves are out of scope here).
type passthroughTranslator struct{}

// Disassemble wraps bc in a single opaque instruction.
func (passthroughTranslator) Disassemble(bc []byte) ([]Inst, error) {
	return []Inst{{Opcode: 0, Operands: append([]byte(nil), bc...)}}, nil
}

// Assemble concatenates every instruction's operands back into raw bytes.
func (passthroughTranslator) Assemble(insts []Inst) ([]byte, error) {
	var out []byte
	for _, inst := range insts {
		out = append(out, inst.Operands...)
	}
	return out, nil
}

// DefaultBytecodeTranslator is the passthrough BytecodeTranslator used when
// a Container is not otherwise configured with one.
var DefaultBytecodeTranslator BytecodeTranslator = passthroughTranslator{}
