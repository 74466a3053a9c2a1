// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/hbctool/hbc/internal/hlog"
)

// hbcMagic identifies an HBC container, independent of version.
const hbcMagic uint64 = 0x1F1903C103BC1FC6

// rawFileHeaderSize is the size, in bytes, of the fixed (non-reserved)
// portion of the file header -- the magic plus every modeled uint32 field.
const rawFileHeaderSize = 8 + 4*19

// FileHeader is the parsed file-level header (spec §3).
type FileHeader struct {
	Version uint32

	FunctionCount       uint32
	StringCount         uint32
	OverflowStringCount uint32

	StringStorageSize  uint32
	ArrayBufferSize    uint32
	ObjKeyBufferSize   uint32
	ObjValueBufferSize uint32
	InstBufferSize     uint32

	InstOffset                   uint32
	FunctionHeadersOffset        uint32
	FunctionHeadersOverflowOffset uint32
	StringTableOffset            uint32
	StringTableOverflowOffset    uint32
	StringStorageOffset          uint32
	ArrayBufferOffset            uint32
	ObjKeyBufferOffset           uint32
	ObjValueBufferOffset         uint32

	FileLength uint32

	// reserved holds the version-specific trailing bytes this core does not
	// model (SPEC_FULL.md §3); captured and re-emitted verbatim.
	reserved []byte
}

// StringTableEntry is one slot of StringTableEntries (spec §3).
type StringTableEntry struct {
	IsUTF16 bool
	Offset  uint32
	Length  uint32
}

// StringTableOverflowEntry is one slot of StringTableOverflowEntries.
type StringTableOverflowEntry struct {
	Offset uint32
	Length uint32
}

// smallFunctionHeader is the exact snapshot that must be written into a
// function's compact slot on export once it has overflowed (spec §3).
type smallFunctionHeader struct {
	offset                 uint32
	paramCount             uint32
	bytecodeSizeInBytes    uint32
	functionName           uint32
	infoOffset             uint32
	frameSize              uint32
	environmentSize        uint32
	highestReadCacheIndex  uint32
	highestWriteCacheIndex uint32
	flags                  uint32
}

// FunctionHeader is one entry of FunctionHeaders; its primary fields always
// hold the true, current values (spec §3).
type FunctionHeader struct {
	Offset                 uint32
	ParamCount             uint32
	BytecodeSizeInBytes    uint32
	FunctionName           uint32
	InfoOffset             uint32
	FrameSize              uint32
	EnvironmentSize        uint32
	HighestReadCacheIndex  uint32
	HighestWriteCacheIndex uint32
	Flags                  uint32

	// small is present if and only if Flags has the overflowed bit set
	// (spec invariant 3).
	small *smallFunctionHeader
}

// Overflowed reports whether this function header uses the overflow form.
func (fh *FunctionHeader) Overflowed() bool {
	return fh.Flags&(1<<overflowedFlagBit) != 0
}

// Options controls Container construction and parsing behavior.
type Options struct {
	// Logger receives diagnostic (non-fatal) events. Defaults to a stderr
	// text logger filtered at warn level.
	Logger hlog.Logger

	// SkipInvariants disables the spec §3 invariant re-validation Parse
	// otherwise performs immediately after a successful parse. Leaving this
	// false (the zero value) means every caller gets validation by default,
	// including a bare &Options{}; set it true only to accept a container
	// Parse would otherwise reject with ErrMalformed.
	SkipInvariants bool

	// ValidateNonRelocating opts into guarding setFunction against
	// overwriting a neighboring function's bytecode region (spec §9 open
	// question). Default false: replicate reference behavior verbatim.
	ValidateNonRelocating bool

	// Translator lifts/lowers function bytecode for GetFunction/SetFunction
	// when called with disasm=true (spec §6). Defaults to
	// DefaultBytecodeTranslator.
	Translator BytecodeTranslator
}

func (o *Options) withDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	cp := *o
	if cp.Logger == nil {
		cp.Logger = hlog.NewFilter(hlog.NewStdLogger(os.Stderr), hlog.FilterLevel(hlog.LevelWarn))
	}
	if cp.Translator == nil {
		cp.Translator = DefaultBytecodeTranslator
	}
	return &cp
}

// Container is the root entity: the parsed file header, tables, and owned
// mutable byte buffers of a single HBC file (spec §3).
type Container struct {
	Header FileHeader

	FunctionHeaders          []FunctionHeader
	StringTableEntries       []StringTableEntry
	StringTableOverflowEntries []StringTableOverflowEntry

	stringStorage  []byte
	arrayBuffer    []byte
	objKeyBuffer   []byte
	objValueBuffer []byte
	instBuffer     []byte

	// trailer holds any bytes after the last modeled buffer's declared end,
	// up to EOF (SPEC_FULL.md §3); preserved verbatim.
	trailer []byte

	// functionHeaderOverflowCount is the number of large (overflow)
	// function header records found at parse time. SetFunction does not
	// update it; Export counts overflowed headers afresh.
	functionHeaderOverflowCount uint32

	opts   *Options
	layout versionLayout
	logger *hlog.Helper
}

// newContainer builds an empty Container wired with opts, filling in
// defaults. Its layout is left unset; Parse fills it in from the decoded
// file header.
func newContainer(opts *Options) *Container {
	opts = opts.withDefaults()
	return &Container{
		opts:   opts,
		logger: hlog.NewHelper(opts.Logger),
	}
}

// Version returns the container's HBC version (86 or 96). Immutable after
// parse (spec §3).
func (c *Container) Version() uint32 { return c.Header.Version }

// FunctionCount returns the number of function headers (spec §4, §6).
func (c *Container) FunctionCount() int { return len(c.FunctionHeaders) }

// StringCount returns the number of string table entries (spec §6).
func (c *Container) StringCount() int { return len(c.StringTableEntries) }

// ArrayBufferSize returns the size, in bytes, of the array literal buffer.
func (c *Container) ArrayBufferSize() int { return len(c.arrayBuffer) }

// ObjKeyBufferSize returns the size, in bytes, of the object-key literal buffer.
func (c *Container) ObjKeyBufferSize() int { return len(c.objKeyBuffer) }

// ObjValueBufferSize returns the size, in bytes, of the object-value literal buffer.
func (c *Container) ObjValueBufferSize() int { return len(c.objValueBuffer) }

// Open memory-maps the HBC file at name and parses it, grounded on mmap-go
// for large-file friendliness.
func Open(name string, opts *Options) (*Container, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	defer data.Unmap()
	defer f.Close()

	// Parse takes ownership of a copy: mmap'd pages are unmapped once this
	// function returns, and the container's buffers must outlive that.
	owned := make([]byte, len(data))
	copy(owned, data)
	return Parse(owned, opts)
}
