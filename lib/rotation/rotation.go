// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rotation implements RotationEngine and MaskRotationEngine
// (spec.md §4.4): given a query vector, precompute its 31 rotations
// (-15..+15) once, then dot each rotation against every database entry.
// Fan-out across database entries uses lib/workerpool instead of the
// reference implementation's rayon parallel iterator.
package rotation

import (
	"fmt"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/encvec"
	"github.com/irisshare/irismpc/lib/workerpool"
)

// NumRotations is the number of lanes produced per database entry: one
// per rotation amount in [bitvec.MinRotation, bitvec.MaxRotation].
const NumRotations = bitvec.MaxRotation - bitvec.MinRotation + 1

// Lanes holds one dot-product result per rotation amount, indexed so
// that Lanes[k] corresponds to rotation amount (bitvec.MinRotation+k).
type Lanes [NumRotations]uint16

// DistanceEngine precomputes a query's 31 rotations as encvec.Vectors
// and dots each against arbitrary database entries, producing the
// numerator lanes consumed by lib/reconstruct.
type DistanceEngine struct {
	rotations [NumRotations]encvec.Vector
	unroll    int
}

// NewDistanceEngine builds a DistanceEngine from a query's ternary (or
// additively-shared) encoding.
func NewDistanceEngine(query encvec.Vector) *DistanceEngine {
	var e DistanceEngine
	for k := 0; k < NumRotations; k++ {
		e.rotations[k] = query.Rotated(bitvec.MinRotation + k)
	}
	return &e
}

// SetUnroll sets the accumulator width DotMod uses per entry, e.g. from
// internal/cpufeat's detected SIMD capability. 0 or 1 runs the plain
// loop; any n produces bit-identical results (encvec.DotModUnrolled).
func (e *DistanceEngine) SetUnroll(n int) {
	e.unroll = n
}

// BatchProcess dots every rotation against every entry in db, writing
// one Lanes value per entry into out. len(out) must equal len(db).
func (e *DistanceEngine) BatchProcess(pool *workerpool.Pool, db []encvec.Vector, out []Lanes) error {
	if len(out) != len(db) {
		return fmt.Errorf("rotation: BatchProcess: len(out)=%d != len(db)=%d", len(out), len(db))
	}
	pool.ParallelFor(len(db), func(i int) {
		entry := db[i]
		for k := range e.rotations {
			out[i][k] = e.rotations[k].DotModUnrolled(&entry, e.unroll)
		}
	})
	return nil
}

// MaskEngine is DistanceEngine's counterpart over packed bitvec.Vectors,
// producing the denominator lanes from a query mask against database
// masks (spec.md §4.1/§4.4). This side of the protocol is not
// secret-shared: masks do not leak biometric information on their own.
type MaskEngine struct {
	rotations [NumRotations]bitvec.Vector
	unroll    int
}

// NewMaskEngine builds a MaskEngine from a query mask.
func NewMaskEngine(query bitvec.Vector) *MaskEngine {
	var e MaskEngine
	for k := 0; k < NumRotations; k++ {
		e.rotations[k] = query.Rotated(bitvec.MinRotation + k)
	}
	return &e
}

// SetUnroll is DistanceEngine.SetUnroll's counterpart for Dot.
func (e *MaskEngine) SetUnroll(n int) {
	e.unroll = n
}

// BatchProcess dots every mask rotation against every entry in db.
func (e *MaskEngine) BatchProcess(pool *workerpool.Pool, db []bitvec.Vector, out []Lanes) error {
	if len(out) != len(db) {
		return fmt.Errorf("rotation: BatchProcess: len(out)=%d != len(db)=%d", len(out), len(db))
	}
	pool.ParallelFor(len(db), func(i int) {
		entry := db[i]
		for k := range e.rotations {
			out[i][k] = e.rotations[k].DotUnrolled(&entry, e.unroll)
		}
	})
	return nil
}
