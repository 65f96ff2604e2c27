// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package wire implements the fixed, unframed binary encoding spec.md §6
// specifies for the Resolver<->Participant byte stream: a fixed 3200-byte
// Template record (the plaintext query, sent identically to every
// Participant — only the enrolled database is secret-shared, never the
// query) followed by an unframed stream of 62-byte, 31-lane numerator
// tuples with no length prefix; the record count is implied by the
// Participant's share-file length and the stream simply ends when it
// does. There is no schema negotiation or variable-length field, so
// hand-written encoding/binary Read/Write methods are used directly
// rather than a generic reflection-based codec, the same shape the
// teacher's own lib/xdr package follows for its fixed wire structs.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/rotation"
)

// Template is the Resolver's SEND-phase payload (spec.md §4.7 step 3):
// the plaintext query pattern and mask, packed little-endian. It is
// written identically to every dialed Participant.
type Template struct {
	Pattern bitvec.Vector
	Mask    bitvec.Vector
}

// Size is the wire size of a Template: 1600 bytes pattern + 1600 bytes
// mask, matching spec.md §6's "3200 bytes = pattern || mask".
const Size = 2 * bitvec.Bytes

// WriteTo writes t as pattern followed by mask, with no length prefix or
// framing.
func (t *Template) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, t.Pattern); err != nil {
		return 0, fmt.Errorf("wire: write pattern: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, t.Mask); err != nil {
		return bitvec.Bytes, fmt.Errorf("wire: write mask: %w", err)
	}
	return Size, nil
}

// ReadFrom reads exactly Size bytes into t. A short read (EOF before the
// full 3200 bytes) is reported as an error, matching spec.md §7's
// ProtocolError on a short read of a fixed-size request.
func (t *Template) ReadFrom(r io.Reader) (int64, error) {
	if err := binary.Read(r, binary.LittleEndian, &t.Pattern); err != nil {
		return 0, fmt.Errorf("wire: read pattern: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &t.Mask); err != nil {
		return bitvec.Bytes, fmt.Errorf("wire: read mask: %w", err)
	}
	return Size, nil
}

// LanesSize is the wire size of one rotation.Lanes tuple: 31 lanes of 2
// bytes each, matching spec.md §6's "31 x 2 = 62 bytes".
const LanesSize = rotation.NumRotations * 2

// WriteLanes writes one unframed 31-lane numerator tuple, the
// Participant's per-entry reply unit (spec.md §4.8 step 3).
func WriteLanes(w io.Writer, lanes rotation.Lanes) error {
	if err := binary.Write(w, binary.LittleEndian, lanes); err != nil {
		return fmt.Errorf("wire: write lanes: %w", err)
	}
	return nil
}

// ReadLanes reads one unframed 31-lane tuple. io.EOF is returned
// unwrapped when the stream ends cleanly on a tuple boundary, so callers
// can distinguish a clean end-of-stream from a mid-tuple truncation
// (io.ErrUnexpectedEOF), which spec.md §4.7 STREAM treats as an early
// participant termination rather than a protocol error.
func ReadLanes(r io.Reader) (rotation.Lanes, error) {
	var lanes rotation.Lanes
	if err := binary.Read(r, binary.LittleEndian, &lanes); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return lanes, err
		}
		return lanes, fmt.Errorf("wire: read lanes: %w", err)
	}
	return lanes, nil
}

// ReadLanesBatch reads up to n tuples from r, returning fewer than n
// (with a nil error) if the stream ends cleanly on a tuple boundary
// before n are read — the "short read" tolerance spec.md §4.7 requires
// of the Resolver's numerator producers, which truncates the final
// batch to the last whole tuple rather than failing the query. A
// mid-tuple truncation (io.ErrUnexpectedEOF) is still a hard error.
func ReadLanesBatch(r io.Reader, n int) ([]rotation.Lanes, error) {
	out := make([]rotation.Lanes, 0, n)
	for i := 0; i < n; i++ {
		lanes, err := ReadLanes(r)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, lanes)
	}
	return out, nil
}
