// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package protoerr holds the sentinel error taxonomy spec.md §7 assigns
// to this system: plain errors.New values wrapped with fmt.Errorf("...:
// %w", ...) at the point of detection, the same small-sentinel-plus-%w
// style the teacher uses across lib/config and lib/connections rather
// than a custom error-struct hierarchy.
package protoerr

import "errors"

var (
	// ErrConfig marks an invalid file path, wrong share count, or bind
	// failure detected at startup. The process should abort with a
	// diagnostic; it is never query-scoped.
	ErrConfig = errors.New("invalid configuration")

	// ErrFormat marks a mask or share file whose size is not a multiple
	// of its record size, or malformed template JSON.
	ErrFormat = errors.New("malformed file format")

	// ErrProtocol marks a short read on a fixed-size request, a decode
	// inconsistency ((d-n) odd or u>d), or a tile-size mismatch implied
	// by a partial batch arriving at a non-tile-boundary offset.
	ErrProtocol = errors.New("protocol violation")

	// ErrIO marks a socket, file, or mmap failure.
	ErrIO = errors.New("i/o failure")

	// ErrShutdown marks cooperative cancellation propagated via context
	// or channel closure, not a failure in itself.
	ErrShutdown = errors.New("shutdown requested")
)
