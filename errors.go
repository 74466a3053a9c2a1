// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import "errors"

// Errors returned by the container model, parser and exporter.
var (
	// ErrInvalidID is returned when a function/string/array/key/value id is
	// out of bounds for its table.
	ErrInvalidID = errors.New("hbc: id out of bounds")

	// ErrEncoding is returned when a non-UTF16 string slot fails UTF-8
	// decoding.
	ErrEncoding = errors.New("hbc: invalid UTF-8 in string slot")

	// ErrOverflowUnsupported is returned when a string set would exceed its
	// slot length, or when a guarded function edit would overwrite the next
	// function's bytecode region.
	ErrOverflowUnsupported = errors.New("hbc: operation would overflow a fixed-size slot")

	// ErrMalformed is returned when the parser detects a structural
	// violation (bad tag, length, or offset) in the input bytes.
	ErrMalformed = errors.New("hbc: malformed container")

	// ErrUnsupportedVersion is returned when the parser sees a version
	// other than 86 or 96.
	ErrUnsupportedVersion = errors.New("hbc: unsupported HBC version")

	// ErrOutsideBoundary is returned by the byte I/O primitives when a read
	// or write would cross a buffer's bounds.
	ErrOutsideBoundary = errors.New("hbc: access outside buffer boundary")
)
