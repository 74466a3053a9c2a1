// Copyright 2024 The hbctool Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package hbc

import (
	"fmt"
	"math"
)

// SLPValue is one decoded element of a serialized-literal group: exactly
// one of its fields is meaningful, selected by Kind (spec §4.2's public
// "kindLabel" contract -- String | Number | Integer | Null | Boolean |
// Empty -- modeled internally as a discriminated union and translated to
// the string label only at this public boundary).
type SLPValue struct {
	Kind    string
	Str     uint32 // valid when Kind == "String": an index into the string table.
	Num     float64
	Int     uint32
	Boolean bool
}

// getSLPGroup is the shared algorithm behind GetArray/GetObjKey/GetObjValue
// (spec §4.2): bounds-check id against size, decode the tag at that offset,
// and iterate count payloads of the tag's kind.
func getSLPGroup(buf []byte, size uint32, id int, what string) (string, []SLPValue, error) {
	if id < 0 || uint32(id) >= size {
		return "", nil, fmt.Errorf("%s id %d: %w", what, id, ErrInvalidID)
	}
	offset := uint32(id)
	tag, err := decodeTag(buf, offset)
	if err != nil {
		return "", nil, fmt.Errorf("%s id %d: %w", what, id, err)
	}

	cursor := offset + tag.headerSize
	width := tag.kind.payloadWidth()
	values := make([]SLPValue, 0, tag.count)
	for i := uint32(0); i < tag.count; i++ {
		v, err := decodeSLPPayload(buf, cursor, tag.kind)
		if err != nil {
			return "", nil, fmt.Errorf("%s id %d, element %d: %w", what, id, i, err)
		}
		values = append(values, v)
		cursor += width
	}
	return tag.kind.kindLabel(), values, nil
}

// decodeSLPPayload decodes a single payload of the given kind at offset.
func decodeSLPPayload(buf []byte, offset uint32, kind sltKind) (SLPValue, error) {
	switch kind {
	case sltNull:
		return SLPValue{Kind: "Null"}, nil
	case sltTrue:
		return SLPValue{Kind: "Boolean", Boolean: true}, nil
	case sltFalse:
		return SLPValue{Kind: "Boolean", Boolean: false}, nil
	case sltByteString:
		b, err := readUint8(buf, offset)
		if err != nil {
			return SLPValue{}, err
		}
		return SLPValue{Kind: "String", Str: uint32(b)}, nil
	case sltShortString:
		v, err := readUint16(buf, offset)
		if err != nil {
			return SLPValue{}, err
		}
		return SLPValue{Kind: "String", Str: uint32(v)}, nil
	case sltLongString:
		v, err := readUint32(buf, offset)
		if err != nil {
			return SLPValue{}, err
		}
		return SLPValue{Kind: "String", Str: v}, nil
	case sltInteger:
		v, err := readUint32(buf, offset)
		if err != nil {
			return SLPValue{}, err
		}
		return SLPValue{Kind: "Integer", Int: v}, nil
	case sltNumber:
		raw, err := readUint64(buf, offset)
		if err != nil {
			return SLPValue{}, err
		}
		return SLPValue{Kind: "Number", Num: math.Float64frombits(raw)}, nil
	default:
		return SLPValue{Kind: "Empty"}, nil
	}
}

// GetArray decodes the serialized-literal group at aid in the array buffer
// (spec §4.2).
func (c *Container) GetArray(aid int) (string, []SLPValue, error) {
	return getSLPGroup(c.arrayBuffer, c.Header.ArrayBufferSize, aid, "array")
}

// GetObjKey decodes the serialized-literal group at kid in the object-key
// buffer (spec §4.2).
func (c *Container) GetObjKey(kid int) (string, []SLPValue, error) {
	return getSLPGroup(c.objKeyBuffer, c.Header.ObjKeyBufferSize, kid, "objkey")
}

// GetObjValue decodes the serialized-literal group at vid in the
// object-value buffer (spec §4.2).
func (c *Container) GetObjValue(vid int) (string, []SLPValue, error) {
	return getSLPGroup(c.objValueBuffer, c.Header.ObjValueBufferSize, vid, "objvalue")
}

// IntValues returns the String/Integer payload indices of vals as a plain
// []uint32, a convenience for callers comparing against expected index
// lists (as spec §8 scenario 6 does).
func IntValues(vals []SLPValue) []uint32 {
	out := make([]uint32, len(vals))
	for i, v := range vals {
		switch v.Kind {
		case "String":
			out[i] = v.Str
		case "Integer":
			out[i] = v.Int
		}
	}
	return out
}
