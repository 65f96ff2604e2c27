// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package reconstruct

import (
	"crypto/rand"
	"math"
	"testing"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/encoder"
	"github.com/irisshare/irismpc/lib/rotation"
)

func TestDecodeIdenticalVectorsIsZero(t *testing.T) {
	// equal == denominator, unequal == 0 -> fraction 0, not corrupt.
	lane := Decode(10, 10)
	if lane.Fraction != 0 {
		t.Fatalf("expected 0 fraction, got %v", lane.Fraction)
	}
	if lane.Corrupt {
		t.Fatal("should not be flagged corrupt")
	}
}

func TestDecodeOddDiffIsCorrupt(t *testing.T) {
	lane := Decode(3, 10) // diff=7, odd
	if !lane.Corrupt {
		t.Fatal("expected odd (den-num) to be flagged corrupt")
	}
}

func TestDistanceFoldsToMinimum(t *testing.T) {
	var num, den rotation.Lanes
	for k := range num {
		den[k] = 100
		num[k] = 100 // fraction 0 everywhere except one lane
	}
	num[5] = 0 // unequal = (100-0)/2=50, fraction 0.5, not the minimum
	got, corrupt := Distance(num, den)
	if corrupt {
		t.Fatal("unexpected corruption")
	}
	if got != 0 {
		t.Fatalf("expected minimum fraction 0, got %v", got)
	}
}

// TestEndToEndMatchesReference exercises the full encode -> rotate ->
// dot -> decode pipeline against the in-process reference distance
// function, for a random template compared against itself (distance 0
// on both paths, with no lane flagged corrupt).
func TestEndToEndMatchesReference(t *testing.T) {
	pattern, err := bitvec.Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	mask, err := bitvec.Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	encPattern := encoder.Encode(pattern, mask)

	var numLanes rotation.Lanes
	for k := 0; k < rotation.NumRotations; k++ {
		rotated := encPattern.Rotated(bitvec.MinRotation + k)
		numLanes[k] = rotated.DotMod(&encPattern)
	}

	got, corrupt := Distance(numLanes, denOfSelf(mask))
	if corrupt {
		t.Fatal("unexpected corruption comparing a template against itself")
	}
	if math.Abs(got) > 1e-9 {
		t.Fatalf("expected ~0 distance against self, got %v", got)
	}

	ref := ReferenceDistance(pattern, mask, pattern, mask)
	if math.Abs(ref) > 1e-9 {
		t.Fatalf("reference distance against self should be ~0, got %v", ref)
	}
}

func denOfSelf(mask bitvec.Vector) rotation.Lanes {
	var lanes rotation.Lanes
	for k := 0; k < rotation.NumRotations; k++ {
		rotated := mask.Rotated(bitvec.MinRotation + k)
		lanes[k] = rotated.Dot(&mask)
	}
	return lanes
}

// TestEndToEndHandCheckedDistance pins the pipeline against a
// hand-computed value rather than only checking MPC-vs-reference
// agreement on random data (scenarios S1/S4's cross-language fidelity
// concern): the mask is all-ones for both templates, one pattern is
// all-zero and the other sets exactly its first 10 bits, so every
// unmasked bit pair mismatches at those 10 positions and matches
// everywhere else. Both sides are also rotation-invariant here (an
// all-zero pattern and an all-ones mask rotate to themselves), so the
// fraction is 10/12800 at every lane, and the folded minimum must land
// on exactly that value.
func TestEndToEndHandCheckedDistance(t *testing.T) {
	var mask bitvec.Vector
	for i := range mask {
		mask[i] = 0xFF
	}

	aPattern := bitvec.Zero()
	var bPattern bitvec.Vector
	for i := 0; i < 10; i++ {
		bPattern.Set(i, true)
	}

	const want = 10.0 / 12800.0

	if ref := ReferenceDistance(aPattern, mask, bPattern, mask); math.Abs(ref-want) > 1e-9 {
		t.Fatalf("reference distance = %v, want %v", ref, want)
	}

	encA := encoder.Encode(aPattern, mask)
	encB := encoder.Encode(bPattern, mask)

	var numLanes, denLanes rotation.Lanes
	for k := 0; k < rotation.NumRotations; k++ {
		rotatedA := encA.Rotated(bitvec.MinRotation + k)
		numLanes[k] = rotatedA.DotMod(&encB)
		rotatedMask := mask.Rotated(bitvec.MinRotation + k)
		denLanes[k] = rotatedMask.Dot(&mask)
	}

	got, corrupt := Distance(numLanes, denLanes)
	if corrupt {
		t.Fatal("unexpected corruption")
	}
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("MPC-reconstructed distance = %v, want %v", got, want)
	}
}
