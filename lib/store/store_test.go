// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"crypto/rand"
	"path/filepath"
	"testing"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/encvec"
)

func TestMaskFileWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "masks.bin")
	const n = 7
	var want [n]bitvec.Vector

	w, err := CreateMaskFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		v, err := bitvec.Random(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		want[i] = v
		if err := w.Write(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	mf, err := OpenMaskFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer mf.Close()

	if got := mf.NumRecords(); got != n {
		t.Fatalf("NumRecords() = %d, want %d", got, n)
	}
	for i := range want {
		if got := mf.Record(i); got != want[i] {
			t.Fatalf("record %d mismatch", i)
		}
	}
	slice := mf.Slice(2, 5)
	for i, v := range slice {
		if v != want[2+i] {
			t.Fatalf("slice[%d] mismatch", i)
		}
	}
}

func TestShareFileWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shares.bin")
	const n = 5
	var want [n]encvec.Vector

	w, err := CreateShareFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		v, err := encvec.Random(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		want[i] = v
		if err := w.Write(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	sf, err := OpenShareFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer sf.Close()

	if got := sf.NumRecords(); got != n {
		t.Fatalf("NumRecords() = %d, want %d", got, n)
	}
	for i := range want {
		if got := sf.Record(i); got != want[i] {
			t.Fatalf("record %d mismatch", i)
		}
	}
	slice := sf.Slice(1, 4)
	for i, v := range slice {
		if v != want[1+i] {
			t.Fatalf("slice[%d] mismatch", i)
		}
	}
}

func TestOpenMaskFileRejectsBadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	w, err := CreateMaskFile(path)
	if err != nil {
		t.Fatal(err)
	}
	v, err := bitvec.Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(v); err != nil {
		t.Fatal(err)
	}
	// Append one stray byte so the file size is no longer a multiple of
	// bitvec.Bytes.
	if _, err := w.f.Write([]byte{0}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenMaskFile(path); err == nil {
		t.Fatal("expected an error opening a malformed mask file")
	}
}
