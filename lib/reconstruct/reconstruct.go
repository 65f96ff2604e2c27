// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package reconstruct implements the Reconstructor (spec.md §4.6): given
// the 31-lane numerator (distance) summed over every Participant's share
// and the Resolver's own 31-lane denominator (mask-overlap) counts, it
// recovers the fractional
// Hamming distance at each rotation and folds them to the minimum.
package reconstruct

import (
	"math"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/rotation"
)

// Lane is one rotation's reconstructed distance.
type Lane struct {
	Fraction float64
	// Corrupt is set when (denominator - numerator) is odd, or the
	// unequal count (denominator - numerator)/2 exceeds the denominator
	// (both computed with wrapping uint16 arithmetic): both indicate either a
	// transmission error or a dishonest participant, per spec.md §4.6's
	// edge-case note. Corrupt lanes still get a best-effort Fraction
	// (matching the reference implementation's unconditional wrapping
	// arithmetic) so a caller that doesn't care can ignore Corrupt.
	Corrupt bool
}

// Decode reconstructs one lane's fraction from its summed numerator and
// denominator shares, mirroring decode_distance's per-lane body: the
// true Hamming-unequal count is (den - num) / 2, since num here is
// encoded as (equal - unequal) and den as (equal + unequal). A
// zero-overlap denominator (the rotated masks share no set bit) has no
// defined fraction and is reported as +Inf, per spec.md §4.6.
func Decode(numerator, denominator uint16) Lane {
	if denominator == 0 {
		return Lane{Fraction: math.Inf(1)}
	}
	diff := denominator - numerator
	unequal := diff / 2
	corrupt := diff%2 != 0 || unequal > denominator
	return Lane{
		Fraction: float64(unequal) / float64(denominator),
		Corrupt:  corrupt,
	}
}

// Distance reconstructs all 31 lanes and returns the minimum fraction
// across rotations (the reported match distance) along with whether any
// lane was flagged Corrupt.
func Distance(numerators, denominators rotation.Lanes) (float64, bool) {
	best := math.Inf(1)
	anyCorrupt := false
	for k := 0; k < rotation.NumRotations; k++ {
		lane := Decode(numerators[k], denominators[k])
		if lane.Corrupt {
			anyCorrupt = true
		}
		if lane.Fraction < best {
			best = lane.Fraction
		}
	}
	return best, anyCorrupt
}

// ReferenceDistance computes the fractional Hamming distance between two
// plaintext pattern/mask pairs directly, without any sharing or
// reconstruction step, by rotating one side across the full range and
// taking the minimum fraction_hamming. It exists purely as an
// in-process correctness oracle for tests (spec.md Testable Property
// #7), mirroring the reference implementation's Template::distance; the
// production Resolver/Participant path never calls it.
func ReferenceDistance(aPattern, aMask, bPattern, bMask bitvec.Vector) float64 {
	best := math.Inf(1)
	for amount := bitvec.MinRotation; amount <= bitvec.MaxRotation; amount++ {
		rp := aPattern.Rotated(amount)
		rm := aMask.Rotated(amount)
		if f := fractionHamming(rp, rm, bPattern, bMask); f < best {
			best = f
		}
	}
	return best
}

func fractionHamming(aPattern, aMask, bPattern, bMask bitvec.Vector) float64 {
	m := aMask.And(&bMask)
	xor := aPattern.Xor(&bPattern)
	p := xor.And(&m)
	num := p.CountOnes()
	den := m.CountOnes()
	return float64(num) / float64(den)
}
