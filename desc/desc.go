// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package desc defines the small tree grammar used to describe the wire
// shape of a serialized value, and a canonical byte encoding of that
// tree used only during session handshake. Two descriptors for the same
// logical shape always encode to identical bytes.
package desc

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Kind identifies which variant of Desc is populated.
type Kind uint8

const (
	KindPrim Kind = iota
	KindAlias
	KindArray
	KindFixedArray
	KindRecord
	KindSum
	KindEnum
)

// Field is one ordered member of a Record. Ordinal is -1 for positional
// tuple fields (named ".f0", ".f1", ...); non-negative ordinals identify
// declared struct fields in declaration order.
type Field struct {
	Name    string `cbor:"1,keyasint"`
	Ordinal int    `cbor:"2,keyasint"`
	Type    Desc   `cbor:"3,keyasint"`
}

// Ctor is one ordered constructor of a Sum. Tag is the wire discriminant.
type Ctor struct {
	Name string `cbor:"1,keyasint"`
	Tag  int    `cbor:"2,keyasint"`
	Type Desc   `cbor:"3,keyasint"`
}

// EnumTag is one declared (name, value) pair of an enumeration, carried
// for schema negotiation only — it plays no role in wire encoding, which
// is exactly the representation type's bytes.
type EnumTag struct {
	Name  string `cbor:"1,keyasint"`
	Value int64  `cbor:"2,keyasint"`
}

// Desc is the algebraic type-descriptor tree. Exactly one group of
// fields is meaningful, selected by Kind.
type Desc struct {
	Kind Kind `cbor:"0,keyasint"`

	// KindPrim, KindAlias
	Name string `cbor:"1,keyasint,omitempty"`

	// KindAlias, KindArray, KindFixedArray: element/underlying type.
	Elem *Desc `cbor:"2,keyasint,omitempty"`

	// KindFixedArray
	N int `cbor:"3,keyasint,omitempty"`

	// KindRecord
	Fields []Field `cbor:"4,keyasint,omitempty"`

	// KindSum
	Ctors []Ctor `cbor:"5,keyasint,omitempty"`

	// KindEnum
	Rep  *Desc     `cbor:"6,keyasint,omitempty"`
	Meta []EnumTag `cbor:"7,keyasint,omitempty"`
}

// Prim builds a bare primitive descriptor, e.g. Prim("int").
func Prim(name string) Desc {
	return Desc{Kind: KindPrim, Name: name}
}

// Alias builds an opaque-alias descriptor: a named wrapper around an
// underlying shape, used for user-declared scalar aliases.
func Alias(name string, underlying Desc) Desc {
	return Desc{Kind: KindAlias, Name: name, Elem: &underlying}
}

// Array builds a dynamic-sequence descriptor.
func Array(elem Desc) Desc {
	return Desc{Kind: KindArray, Elem: &elem}
}

// FixedArray builds a fixed-length array descriptor.
func FixedArray(elem Desc, n int) Desc {
	return Desc{Kind: KindFixedArray, Elem: &elem, N: n}
}

// Record builds a record (struct or positional tuple) descriptor.
func Record(fields []Field) Desc {
	return Desc{Kind: KindRecord, Fields: fields}
}

// Sum builds a tagged-union descriptor.
func Sum(ctors []Ctor) Desc {
	return Desc{Kind: KindSum, Ctors: ctors}
}

// Enum builds an enumeration descriptor over representation type rep.
func Enum(rep Desc, meta []EnumTag) Desc {
	return Desc{Kind: KindEnum, Rep: &rep, Meta: meta}
}

// TupleFields builds the ordered, positionally-named field list for an
// N-tuple (".f0", ".f1", ...) or an anonymous sum's payload sequence,
// per the ".fN" convention shared by both shapes.
func TupleFields(elems []Desc) []Field {
	fs := make([]Field, len(elems))
	for i, e := range elems {
		fs[i] = Field{Name: fmt.Sprintf(".f%d", i), Ordinal: -1, Type: e}
	}
	return fs
}

// TupleCtors builds the ordered, positionally-named constructor list for
// an anonymous sum, per the ".fN" convention.
func TupleCtors(elems []Desc) []Ctor {
	cs := make([]Ctor, len(elems))
	for i, e := range elems {
		cs[i] = Ctor{Name: fmt.Sprintf(".f%d", i), Tag: i, Type: e}
	}
	return cs
}

// encMode is the CBOR encoder configured for Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. The same logical Desc always produces
// identical bytes, which the handshake depends on.
var encMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic("desc: cbor encoder initialization failed: " + err.Error())
	}
	encMode = m
}

// Encode produces the canonical byte encoding of d, used only during
// handshake (spec: "Desc has a canonical byte encoding used on the wire
// during handshake").
func Encode(d Desc) []byte {
	b, err := encMode.Marshal(d)
	if err != nil {
		// Desc is a closed, serializable tree; construction helpers never
		// produce a value CBOR cannot encode.
		panic("desc: encode: " + err.Error())
	}
	return b
}

// Decode parses the canonical byte encoding back into a Desc.
func Decode(b []byte) (Desc, error) {
	var d Desc
	if err := cbor.Unmarshal(b, &d); err != nil {
		return Desc{}, fmt.Errorf("desc: decode: %w", err)
	}
	return d, nil
}

// Equal reports whether a and b describe the same shape, by comparing
// their canonical encodings — the same comparison the handshake peer is
// expected to perform against its inferred type.
func Equal(a, b Desc) bool {
	ea, eb := Encode(a), Encode(b)
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i] != eb[i] {
			return false
		}
	}
	return true
}
