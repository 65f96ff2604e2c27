// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package rand

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	mathrand "math/rand"
)

// secureSource is a math/rand.Source64 backed by crypto/rand, so callers
// needing the math/rand.Rand convenience API (Shuffle, Intn, ...) still
// get cryptographically secure output. Used to build the package default;
// never seed it, hence the panicking Seed.
type secureSource struct{}

func newSecureSource() *secureSource {
	return &secureSource{}
}

func (s *secureSource) Int63() int64 {
	return int64(s.Uint64() &^ (1 << 63))
}

func (s *secureSource) Uint64() uint64 {
	var b [8]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		// crypto/rand.Reader failing is a fatal platform condition the
		// caller cannot recover from; the stdlib's own rand.Read docs
		// describe this as "should never happen".
		panic("irismpc/lib/rand: crypto/rand unavailable: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}

func (s *secureSource) Seed(int64) {
	panic("irismpc/lib/rand: secureSource does not support Seed")
}

var _ mathrand.Source64 = (*secureSource)(nil)
