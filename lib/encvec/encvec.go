// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package encvec implements the unpacked, mod-2^16 ternary encoding of a
// BitVector used by the additive-sharing protocol: one uint16 per bit,
// valued in {0xFFFF (-1), 0, 1} before sharing, and an arbitrary residue
// class of Z/2^16 after.
package encvec

import (
	"fmt"
	"io"

	"github.com/irisshare/irismpc/lib/bitvec"
)

// NumElements is the number of uint16 lanes in a Vector: one per bit of
// a bitvec.Vector.
const NumElements = bitvec.NumBits

// Rows and Cols mirror bitvec's row/column shape; rotation operates
// independently on each Cols-wide row.
const (
	Rows = bitvec.Rows
	Cols = bitvec.Cols
)

// Vector is an unpacked, modular encoding: Rows rows of Cols uint16 lanes.
// The zero value is the all-zero vector.
type Vector [NumElements]uint16

// Zero returns the all-zero Vector.
func Zero() Vector {
	return Vector{}
}

// Random fills a Vector with uniformly random lanes read from src,
// typically used to produce n-1 of an n-way additive share set.
func Random(src io.Reader) (Vector, error) {
	var v Vector
	var buf [2]byte
	for i := range v {
		if _, err := io.ReadFull(src, buf[:]); err != nil {
			return Vector{}, fmt.Errorf("encvec: random: %w", err)
		}
		v[i] = uint16(buf[0]) | uint16(buf[1])<<8
	}
	return v, nil
}

// FromBitVector encodes a BitVector as a ternary Vector: set bits (under
// the mask convention, a 1 lane) become 1, clear bits become 0. Callers
// producing an iris-code encoding (pattern combined with mask) apply
// FromMaskedBitVector instead; this is the plain {0,1} encoding used for
// masks and raw patterns.
func FromBitVector(b bitvec.Vector) Vector {
	var v Vector
	for i := 0; i < NumElements; i++ {
		if b.Get(i) {
			v[i] = 1
		}
	}
	return v
}

// FromMaskedBitVector encodes pattern under mask into the signed ternary
// alphabet {-1, 0, 1} spec.md §4.2 describes for iris codes, matching
// encode() == mask - 2*pattern (mod 2^16) with pattern pre-masked: a bit
// that is masked out encodes as 0 regardless of pattern; a masked-in bit
// that is set encodes as -1 (0xFFFF mod 2^16); a masked-in bit that is
// clear encodes as 1.
func FromMaskedBitVector(pattern, mask bitvec.Vector) Vector {
	var v Vector
	for i := 0; i < NumElements; i++ {
		if !mask.Get(i) {
			continue
		}
		if pattern.Get(i) {
			v[i] = negOne
		} else {
			v[i] = 1
		}
	}
	return v
}

const negOne = ^uint16(0)

// AddAssignMod adds other into v element-wise, modulo 2^16 (Go's
// unsigned overflow is exactly this arithmetic).
func (v *Vector) AddAssignMod(other *Vector) {
	for i := range v {
		v[i] += other[i]
	}
}

// SubAssignMod subtracts other from v element-wise, modulo 2^16.
func (v *Vector) SubAssignMod(other *Vector) {
	for i := range v {
		v[i] -= other[i]
	}
}

// MulAssignMod multiplies v by other element-wise, modulo 2^16.
func (v *Vector) MulAssignMod(other *Vector) {
	for i := range v {
		v[i] *= other[i]
	}
}

// NegAssignMod negates v element-wise, modulo 2^16.
func (v *Vector) NegAssignMod() {
	for i := range v {
		v[i] = -v[i]
	}
}

// SumMod returns the modular sum of all lanes.
func (v *Vector) SumMod() uint16 {
	var sum uint16
	for _, x := range v {
		sum += x
	}
	return sum
}

// DotMod returns the modular dot product of v and other.
func (v *Vector) DotMod(other *Vector) uint16 {
	var sum uint16
	for i := range v {
		sum += v[i] * other[i]
	}
	return sum
}

// maxDotUnroll bounds DotModUnrolled's accumulator count; internal/cpufeat
// never reports an unroll factor wider than this.
const maxDotUnroll = 8

// DotModUnrolled is DotMod computed with unroll independent accumulators,
// folded together at the end. Addition mod 2^16 is commutative and
// associative, so the result is bit-identical to DotMod regardless of
// unroll width; only instruction-level parallelism differs. unroll <= 1
// falls back to DotMod directly.
func (v *Vector) DotModUnrolled(other *Vector, unroll int) uint16 {
	if unroll <= 1 {
		return v.DotMod(other)
	}
	if unroll > maxDotUnroll {
		unroll = maxDotUnroll
	}
	var acc [maxDotUnroll]uint16
	i := 0
	for ; i+unroll <= NumElements; i += unroll {
		for k := 0; k < unroll; k++ {
			acc[k] += v[i+k] * other[i+k]
		}
	}
	var sum uint16
	for _, a := range acc[:unroll] {
		sum += a
	}
	for ; i < NumElements; i++ {
		sum += v[i] * other[i]
	}
	return sum
}

// Equal reports whether v and other are lane-for-lane identical.
func (v *Vector) Equal(other *Vector) bool {
	return *v == *other
}

// RotateInPlace rotates every row by amount columns, in
// [bitvec.MinRotation, bitvec.MaxRotation]. Positive amounts move a
// row's lanes toward higher column indices (wrapping at Cols), matching
// bitvec.Vector.RotateInPlace exactly, so that
// FromBitVector(b.Rotated(r)) == FromBitVector(b).Rotated(r) for all r.
func (v *Vector) RotateInPlace(amount int) {
	if amount < bitvec.MinRotation || amount > bitvec.MaxRotation {
		panic(fmt.Sprintf("encvec: rotation amount %d out of range [%d,%d]", amount, bitvec.MinRotation, bitvec.MaxRotation))
	}
	if amount == 0 {
		return
	}
	var tmp [bitvec.MaxRotation]uint16
	for r := 0; r < Rows; r++ {
		row := v[r*Cols : r*Cols+Cols]
		rotateRowU16(row, amount, tmp[:])
	}
}

// Rotated returns a copy of v rotated by amount.
func (v Vector) Rotated(amount int) Vector {
	v.RotateInPlace(amount)
	return v
}

// rotateRowU16 rotates a Cols-wide row of lanes in place, matching the
// reference implementation's rotate_right(amount)/rotate_left(-amount)
// on a 200-element slice. tmp must have capacity >= |amount|.
func rotateRowU16(row []uint16, amount int, tmp []uint16) {
	n := len(row)
	if amount > 0 {
		k := amount
		scratch := tmp[:k]
		copy(scratch, row[n-k:])
		copy(row[k:], row[:n-k])
		copy(row[:k], scratch)
		return
	}
	k := -amount
	scratch := tmp[:k]
	copy(scratch, row[:k])
	copy(row[:n-k], row[k:])
	copy(row[n-k:], scratch)
}
