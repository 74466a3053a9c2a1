// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

// Fuzz is the legacy go-fuzz entry point (github.com/dvyukov/go-fuzz
// harness convention) over Parse, exercising the full HBC parse/export path.
func Fuzz(data []byte) int {
	c, err := Parse(data, &Options{})
	if err != nil {
		return 0
	}
	if _, err := c.Export(); err != nil {
		return 0
	}
	return 1
}
