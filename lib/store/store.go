// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package store implements the MaskFile and ShareFile formats (spec.md
// §3/§6): flat, headerless concatenations of fixed-size BitVector or
// EncodedVector records, mmapped read-only when a Resolver or Participant
// starts and written sequentially once at prepare time.
package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/irisshare/irismpc/internal/mmapfile"
	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/encvec"
)

// MaskFile is the mmapped concatenation of every enrolled template's
// BitVector, one shared copy consulted only by the Resolver.
type MaskFile struct {
	mf *mmapfile.File
}

// OpenMaskFile mmaps path as a MaskFile.
func OpenMaskFile(path string) (*MaskFile, error) {
	mf, err := mmapfile.Open(path, bitvec.Bytes)
	if err != nil {
		return nil, fmt.Errorf("store: open mask file: %w", err)
	}
	return &MaskFile{mf: mf}, nil
}

// NumRecords returns the number of enrolled masks.
func (m *MaskFile) NumRecords() int { return m.mf.NumRecords() }

// Record copies the i-th mask out of the underlying mapping.
func (m *MaskFile) Record(i int) bitvec.Vector {
	var v bitvec.Vector
	copy(v[:], m.mf.Record(i))
	return v
}

// Slice decodes records [start, end) into a freshly allocated slice,
// the shape lib/kernel.MaskKernel.Process consumes per tile.
func (m *MaskFile) Slice(start, end int) []bitvec.Vector {
	out := make([]bitvec.Vector, end-start)
	for i := range out {
		copy(out[i][:], m.mf.Record(start+i))
	}
	return out
}

// Close unmaps the file.
func (m *MaskFile) Close() error { return m.mf.Close() }

// ShareFile is one Participant's mmapped concatenation of encoded
// shares. Element i corresponds to the same enrolled template as
// element i of the MaskFile and of every other Participant's ShareFile.
type ShareFile struct {
	sf *mmapfile.File
}

const shareRecordSize = encvec.NumElements * 2

// OpenShareFile mmaps path as a ShareFile.
func OpenShareFile(path string) (*ShareFile, error) {
	sf, err := mmapfile.Open(path, shareRecordSize)
	if err != nil {
		return nil, fmt.Errorf("store: open share file: %w", err)
	}
	return &ShareFile{sf: sf}, nil
}

// NumRecords returns the number of enrolled shares.
func (s *ShareFile) NumRecords() int { return s.sf.NumRecords() }

// Record decodes the i-th share.
func (s *ShareFile) Record(i int) encvec.Vector {
	return decodeShare(s.sf.Record(i))
}

// Slice decodes records [start, end) into a freshly allocated slice,
// the shape lib/kernel.DistanceKernel.Process consumes per tile.
func (s *ShareFile) Slice(start, end int) []encvec.Vector {
	out := make([]encvec.Vector, end-start)
	for i := range out {
		out[i] = decodeShare(s.sf.Record(start + i))
	}
	return out
}

// Close unmaps the file.
func (s *ShareFile) Close() error { return s.sf.Close() }

func decodeShare(raw []byte) encvec.Vector {
	var v encvec.Vector
	for i := range v {
		v[i] = binary.LittleEndian.Uint16(raw[2*i : 2*i+2])
	}
	return v
}

// MaskWriter appends BitVector records to a MaskFile under construction,
// the prepare subcommand's sequential-write counterpart to mmapfile's
// read path.
type MaskWriter struct {
	f *os.File
	w *bufio.Writer
}

// CreateMaskFile truncates (or creates) path for sequential mask writes.
func CreateMaskFile(path string) (*MaskWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("store: create mask file: %w", err)
	}
	return &MaskWriter{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends one mask record.
func (w *MaskWriter) Write(v bitvec.Vector) error {
	if _, err := w.w.Write(v[:]); err != nil {
		return fmt.Errorf("store: write mask record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *MaskWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("store: flush mask file: %w", err)
	}
	return w.f.Close()
}

// ShareWriter appends EncodedVector records to one Participant's
// ShareFile under construction.
type ShareWriter struct {
	f   *os.File
	w   *bufio.Writer
	buf [shareRecordSize]byte
}

// CreateShareFile truncates (or creates) path for sequential share
// writes.
func CreateShareFile(path string) (*ShareWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("store: create share file: %w", err)
	}
	return &ShareWriter{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends one share record.
func (w *ShareWriter) Write(v encvec.Vector) error {
	for i, e := range v {
		binary.LittleEndian.PutUint16(w.buf[2*i:2*i+2], e)
	}
	if _, err := w.w.Write(w.buf[:]); err != nil {
		return fmt.Errorf("store: write share record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *ShareWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("store: flush share file: %w", err)
	}
	return w.f.Close()
}
