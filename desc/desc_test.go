// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package desc

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Desc{
		Prim("int"),
		Alias("UserId", Prim("long")),
		Array(Prim("byte")),
		FixedArray(Prim("double"), 8),
		Record(TupleFields([]Desc{Prim("int"), Prim("bool")})),
		Sum(TupleCtors([]Desc{Prim("byte"), Array(Prim("byte")), Prim("unit")})),
		Enum(Prim("int"), []EnumTag{{Name: "Red", Value: 0}, {Name: "Blue", Value: 1}}),
	}

	for _, d := range cases {
		b := Encode(d)
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !Equal(d, got) {
			t.Errorf("round trip mismatch for %+v: got %+v", d, got)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	d := Record(TupleFields([]Desc{
		Prim("int"),
		Array(Prim("char")),
		FixedArray(Prim("byte"), 4),
	}))
	a := Encode(d)
	b := Encode(d)
	if string(a) != string(b) {
		t.Fatalf("non-deterministic encoding:\n%x\n%x", a, b)
	}
}

func TestEqualDistinguishesShapes(t *testing.T) {
	if Equal(Prim("int"), Prim("long")) {
		t.Fatal("int should not equal long")
	}
	if Equal(Array(Prim("byte")), FixedArray(Prim("byte"), 4)) {
		t.Fatal("Array should not equal FixedArray")
	}
	if Equal(Alias("A", Prim("int")), Alias("B", Prim("int"))) {
		t.Fatal("aliases with different names should differ")
	}
}

func TestTupleFieldsOrdinalsAreNegativeOne(t *testing.T) {
	fs := TupleFields([]Desc{Prim("int"), Prim("bool"), Prim("double")})
	for i, f := range fs {
		if f.Ordinal != -1 {
			t.Errorf("field %d: ordinal = %d, want -1", i, f.Ordinal)
		}
		want := ".f" + string(rune('0'+i))
		if f.Name != want {
			t.Errorf("field %d: name = %q, want %q", i, f.Name, want)
		}
	}
}
