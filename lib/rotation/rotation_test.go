// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package rotation

import (
	"crypto/rand"
	"testing"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/encvec"
	"github.com/irisshare/irismpc/lib/workerpool"
)

func TestDistanceEngineMatchesDirectDot(t *testing.T) {
	query, err := encvec.Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	entries := make([]encvec.Vector, 8)
	for i := range entries {
		entries[i], err = encvec.Random(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
	}

	engine := NewDistanceEngine(query)
	out := make([]Lanes, len(entries))
	pool := workerpool.New(4)
	if err := engine.BatchProcess(pool, entries, out); err != nil {
		t.Fatal(err)
	}

	for i, entry := range entries {
		for k := 0; k < NumRotations; k++ {
			amount := bitvec.MinRotation + k
			rotated := query.Rotated(amount)
			want := rotated.DotMod(&entry)
			if out[i][k] != want {
				t.Fatalf("entry %d, amount %d: got %d, want %d", i, amount, out[i][k], want)
			}
		}
	}
}

func TestMaskEngineMatchesDirectDot(t *testing.T) {
	query, err := bitvec.Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	entries := make([]bitvec.Vector, 8)
	for i := range entries {
		entries[i], err = bitvec.Random(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
	}

	engine := NewMaskEngine(query)
	out := make([]Lanes, len(entries))
	pool := workerpool.New(4)
	if err := engine.BatchProcess(pool, entries, out); err != nil {
		t.Fatal(err)
	}

	for i, entry := range entries {
		for k := 0; k < NumRotations; k++ {
			amount := bitvec.MinRotation + k
			rotated := query.Rotated(amount)
			want := rotated.Dot(&entry)
			if out[i][k] != want {
				t.Fatalf("entry %d, amount %d: got %d, want %d", i, amount, out[i][k], want)
			}
		}
	}
}

func TestBatchProcessLengthMismatch(t *testing.T) {
	query, _ := encvec.Random(rand.Reader)
	engine := NewDistanceEngine(query)
	pool := workerpool.New(2)
	err := engine.BatchProcess(pool, make([]encvec.Vector, 3), make([]Lanes, 2))
	if err == nil {
		t.Fatal("expected length-mismatch error")
	}
}
