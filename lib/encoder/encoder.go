// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package encoder turns a raw iris pattern/mask pair into its ternary
// encvec.Vector and, separately, an n-way additive share set of any
// encvec.Vector, per spec.md §4.3.
package encoder

import (
	"fmt"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/encvec"
	"github.com/irisshare/irismpc/lib/rand"
)

// Encode produces the ternary encoding of an iris code (spec.md §4.2):
// masked-out bits encode as 0, unmasked 0-bits as 1, unmasked 1-bits as
// the mod-2^16 representation of -1 (0xFFFF).
func Encode(pattern, mask bitvec.Vector) encvec.Vector {
	return encvec.FromMaskedBitVector(pattern, mask)
}

// EncodeMask produces the plain {0,1} encoding of a mask vector on its
// own. The protocol path does not call it: masks are not secret-shared,
// and the Resolver computes denominators from the packed mask bits
// (lib/rotation.MaskEngine).
func EncodeMask(mask bitvec.Vector) encvec.Vector {
	return encvec.FromBitVector(mask)
}

// Share splits v into n additive shares over Z/2^16: the first n-1
// shares are drawn from a cryptographically secure source, and the last
// is fixed so that the shares sum to v exactly (spec.md §4.3). n must be
// >= 1; Share panics on n == 0, since a zero-share split cannot encode
// anything.
func Share(v encvec.Vector, n int) ([]encvec.Vector, error) {
	if n == 0 {
		panic("encoder: Share called with n == 0")
	}
	shares := make([]encvec.Vector, n)
	remainder := v
	for i := 0; i < n-1; i++ {
		s, err := encvec.Random(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("encoder: share %d: %w", i, err)
		}
		shares[i] = s
		remainder.SubAssignMod(&s)
	}
	shares[n-1] = remainder
	return shares, nil
}

// Reconstruct sums a share set back into the original vector. It is the
// inverse of Share and is used only by tests and debugging tools, never
// by the Resolver/Participant production path, which reconstructs
// distances rather than raw vectors (spec.md §4.6).
func Reconstruct(shares []encvec.Vector) encvec.Vector {
	var sum encvec.Vector
	for i := range shares {
		sum.AddAssignMod(&shares[i])
	}
	return sum
}
