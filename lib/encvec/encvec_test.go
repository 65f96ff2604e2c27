// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package encvec

import (
	"crypto/rand"
	"testing"

	"github.com/irisshare/irismpc/lib/bitvec"
)

func TestRotationInverse(t *testing.T) {
	t.Parallel()
	for trial := 0; trial < 20; trial++ {
		v, err := Random(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		for amount := bitvec.MinRotation; amount <= bitvec.MaxRotation; amount++ {
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
	var v Vector
	v[5] = 1
	got := v.Rotated(3)
	if got[8] != 1 {
		t.Fatalf("expected lane 5 to move to lane 8 after rotating by +3, row: %v", got[:16])
	}
}

// TestEncodeRotateEquivalence checks the fundamental
// encode(rotate(T)) == rotate(encode(T)) invariant (spec.md §3) by
// comparing bitvec rotation against encvec rotation on the same random
// vector, for every legal rotation amount.
func TestEncodeRotateEquivalence(t *testing.T) {
	t.Parallel()
	b, err := bitvec.Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	base := FromBitVector(b)
	for amount := bitvec.MinRotation; amount <= bitvec.MaxRotation; amount++ {
		rotatedThenEncoded := FromBitVector(b.Rotated(amount))
		encodedThenRotated := base.Rotated(amount)
		if !rotatedThenEncoded.Equal(&encodedThenRotated) {
			t.Fatalf("amount %d: encode(rotate(b)) != rotate(encode(b))", amount)
		}
	}
}

func TestModularArithmetic(t *testing.T) {
	a, err := Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	sum := a
	sum.AddAssignMod(&b)
	back := sum
	back.SubAssignMod(&b)
	if !back.Equal(&a) {
		t.Fatal("add then sub did not round-trip")
	}

	neg := a
	neg.NegAssignMod()
	neg.AddAssignMod(&a)
	if neg.SumMod() != 0 {
		t.Fatalf("v + (-v) should sum to 0 mod 2^16, got %d", neg.SumMod())
	}
}

func TestFromMaskedBitVectorTernary(t *testing.T) {
	pattern, err := bitvec.Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	mask, err := bitvec.Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	v := FromMaskedBitVector(pattern, mask)
	for i := 0; i < NumElements; i++ {
		switch {
		case !mask.Get(i):
			if v[i] != 0 {
				t.Fatalf("bit %d: masked-out lane should be 0, got %d", i, v[i])
			}
		case pattern.Get(i):
			if v[i] != negOne {
				t.Fatalf("bit %d: masked-in set pattern bit should encode -1, got %d", i, v[i])
			}
		default:
			if v[i] != 1 {
				t.Fatalf("bit %d: masked-in clear pattern bit should encode 1, got %d", i, v[i])
			}
		}
	}
}
