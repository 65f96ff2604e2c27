// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rand provides the secure randomness source used throughout the
// protocol for share generation and rotation sampling: every byte must
// come from a cryptographically secure source, never math/rand's default
// PRNG, since a predictable share breaks the additive-sharing privacy
// guarantee outright.
package rand

import (
	"crypto/rand"
	mathrand "math/rand"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// defaultRand is a math/rand.Rand whose source reads crypto/rand on
// every draw, giving the convenience API (Shuffle, Intn, ...) without
// weakening the entropy source.
var defaultRand = mathrand.New(newSecureSource())

// Reader is an io.Reader that draws cryptographically secure bytes; it
// is crypto/rand.Reader directly, re-exported so callers that already
// import lib/rand for String/Uint64 don't also need to import
// crypto/rand.
var Reader = rand.Reader

// String returns a random string of length l drawn from an
// alphanumeric alphabet.
func String(l int) string {
	if l <= 0 {
		return ""
	}
	b := make([]byte, l)
	for i := range b {
		b[i] = letters[defaultRand.Intn(len(letters))]
	}
	return string(b)
}

// Uint64 returns a single cryptographically secure random uint64.
func Uint64() uint64 {
	return defaultRand.Uint64()
}

// Int63n returns, as an int64, a non-negative random number in [0,n).
func Int63n(n int64) int64 {
	return defaultRand.Int63n(n)
}
