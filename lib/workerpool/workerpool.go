// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package workerpool provides a fixed-size goroutine pool for data-parallel
// fan-out, the Go-idiomatic stand-in for the reference implementation's use
// of rayon's parallel iterators (spec.md §9: "rayon's data-parallel-iterator
// maps onto a bounded worker pool in a language without native
// fork-join"). Both lib/rotation and lib/kernel drive their per-item work
// through ParallelFor rather than spawning one goroutine per item, bounding
// concurrency to a configured width instead of the database size.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs work items across a fixed number of goroutines.
type Pool struct {
	width int
}

// New returns a Pool with the given width. A width <= 0 uses
// runtime.GOMAXPROCS(0).
func New(width int) *Pool {
	if width <= 0 {
		width = runtime.GOMAXPROCS(0)
	}
	return &Pool{width: width}
}

// Width reports the pool's configured concurrency.
func (p *Pool) Width() int {
	return p.width
}

// ParallelFor calls fn(i) for every i in [0,n), distributing calls across
// the pool's goroutines, and blocks until all have returned. fn must be
// safe to call concurrently from multiple goroutines.
func (p *Pool) ParallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	width := p.width
	if width > n {
		width = n
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(width)
	for w := 0; w < width; w++ {
		go func() {
			defer wg.Done()
			for {
				i := next.Add(1) - 1
				if i >= int64(n) {
					return
				}
				fn(int(i))
			}
		}()
	}
	wg.Wait()
}
