// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package workerpool

import (
	"sync/atomic"
	"testing"
)

func TestParallelForVisitsEveryIndex(t *testing.T) {
	const n = 10000
	var seen [n]atomic.Bool
	p := New(8)
	p.ParallelFor(n, func(i int) {
		seen[i].Store(true)
	})
	for i, s := range seen {
		if !s.Load() {
			t.Fatalf("index %d was never visited", i)
		}
	}
}

func TestParallelForEmpty(t *testing.T) {
	p := New(4)
	called := false
	p.ParallelFor(0, func(i int) { called = true })
	if called {
		t.Fatal("fn should not be called for n=0")
	}
}

func TestParallelForNarrowerThanWidth(t *testing.T) {
	p := New(64)
	var count atomic.Int64
	p.ParallelFor(3, func(i int) { count.Add(1) })
	if count.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", count.Load())
	}
}

func TestNewDefaultsToGOMAXPROCS(t *testing.T) {
	p := New(0)
	if p.Width() <= 0 {
		t.Fatalf("expected positive default width, got %d", p.Width())
	}
}
