// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cpufeat probes the host's SIMD capability once at process
// startup and turns it into an unroll factor for the scalar dot-product
// loops in lib/kernel. spec.md §4.5 allows "architecture-specific
// kernels behind a common... scalar reference" gated on a capability
// probe; this package supplies the probe without emitting any actual
// SIMD assembly — the portable Go loop just gets unrolled wider on
// hardware that can retire more 64-bit XOR/POPCNT operations per cycle.
package cpufeat

import "github.com/klauspost/cpuid/v2"

// Level names the detected vector-width tier, widest match first.
type Level int

const (
	LevelScalar Level = iota
	LevelSSE
	LevelAVX2
	LevelAVX512
)

func (l Level) String() string {
	switch l {
	case LevelAVX512:
		return "avx512"
	case LevelAVX2:
		return "avx2"
	case LevelSSE:
		return "sse"
	default:
		return "scalar"
	}
}

// Detect inspects the running CPU and reports its vector-width tier.
func Detect() Level {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return LevelAVX512
	case cpuid.CPU.Supports(cpuid.AVX2):
		return LevelAVX2
	case cpuid.CPU.Supports(cpuid.SSE2):
		return LevelSSE
	default:
		return LevelScalar
	}
}

// UnrollFactor returns the number of uint64 limbs lib/kernel's
// dot-product loop should process per inner-loop iteration for the
// given Level. These are conservative, chosen to keep the unrolled loop
// body small enough to stay in L1 instruction cache, not tuned against
// hardware counters: the only correctness requirement (spec.md §4.5) is
// that every unroll factor produce bit-identical results, which a plain
// summation loop guarantees regardless of width.
func (l Level) UnrollFactor() int {
	switch l {
	case LevelAVX512:
		return 8
	case LevelAVX2:
		return 4
	case LevelSSE:
		return 2
	default:
		return 1
	}
}
