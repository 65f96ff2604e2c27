// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package bitvec

import (
	"crypto/rand"
	"testing"
)

func TestLimbsExact(t *testing.T) {
	if numLimbs*64 != NumBits {
		t.Fatalf("numLimbs*64 = %d, want %d", numLimbs*64, NumBits)
	}
	if Rows*RowBytes != Bytes {
		t.Fatalf("Rows*RowBytes = %d, want %d", Rows*RowBytes, Bytes)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	v, err := Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{0, 1, 63, 64, 65, 127, 128, 191, 199, 200, 12799} {
		want := !v.Get(i)
		v.Set(i, want)
		if got := v.Get(i); got != want {
			t.Errorf("bit %d: got %v, want %v", i, got, want)
		}
	}
}

func TestRotationInverse(t *testing.T) {
	t.Parallel()
	for trial := 0; trial < 20; trial++ {
		v, err := Random(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		for amount := MinRotation; amount <= MaxRotation; amount++ {
			got := v.Rotated(amount).Rotated(-amount)
			if !got.Equal(&v) {
				t.Fatalf("trial %d: rotation by %d then %d did not round-trip", trial, amount, -amount)
			}
		}
	}
}

func TestRotationZeroIsNoop(t *testing.T) {
	v, err := Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	got := v.Rotated(0)
	if !got.Equal(&v) {
		t.Fatal("rotation by 0 changed the vector")
	}
}

func TestRotationMovesColumns(t *testing.T) {
	// Build a vector with a single bit set at column 5 of row 0, rotate
	// it by +3, and confirm the bit landed at column 8 (positive amounts
	// move bits toward higher column indices, wrapping at Cols).
	var v Vector
	v.Set(5, true)
	got := v.Rotated(3)
	if !got.Get(8) {
		t.Fatal("expected bit to move from column 5 to column 8 after rotating by +3")
	}
	if got.CountOnes() != 1 {
		t.Fatalf("expected exactly one bit set, got %d", got.CountOnes())
	}
}

func TestBitwiseOps(t *testing.T) {
	a, _ := Random(rand.Reader)
	b, _ := Random(rand.Reader)

	and := a.And(&b)
	or := a.Or(&b)
	xor := a.Xor(&b)
	not := a.Not()

	for i := 0; i < NumBits; i++ {
		ai, bi := a.Get(i), b.Get(i)
		if got := and.Get(i); got != (ai && bi) {
			t.Fatalf("AND mismatch at bit %d", i)
		}
		if got := or.Get(i); got != (ai || bi) {
			t.Fatalf("OR mismatch at bit %d", i)
		}
		if got := xor.Get(i); got != (ai != bi) {
			t.Fatalf("XOR mismatch at bit %d", i)
		}
		if got := not.Get(i); got != !ai {
			t.Fatalf("NOT mismatch at bit %d", i)
		}
	}
}

func TestCountOnesAndDot(t *testing.T) {
	a, _ := Random(rand.Reader)
	b, _ := Random(rand.Reader)

	and := a.And(&b)
	want := and.CountOnes()

	if got := a.Dot(&b); int(got) != want {
		t.Fatalf("Dot = %d, want popcount(AND) = %d", got, want)
	}
	if got := a.CountOnes(); got < 0 || got > NumBits {
		t.Fatalf("CountOnes out of range: %d", got)
	}
}
