// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package mmapfile memory-maps a fixed-record-size file read-only, the
// access pattern spec.md §3/§6 requires of the MaskFile and ShareFile:
// both are opened once when the serving subcommand starts and shared
// read-only by every query and worker with no locking, so the OS page cache (rather than a process
// heap copy) backs repeated random-tile access across a query's
// lifetime. The platform-specific mmap/munmap calls are grounded on the
// teacher's vendored maxminddb-golang mmap_unix.go.
package mmapfile

import (
	"fmt"
	"os"
)

// File is a read-only, fixed-record-size memory-mapped file.
type File struct {
	f          *os.File
	data       []byte
	recordSize int
}

// Open maps path read-only and validates that its size is an exact
// multiple of recordSize, the FormatError condition spec.md §7 assigns
// to a malformed mask or share file.
func Open(path string, recordSize int) (*File, error) {
	if recordSize <= 0 {
		return nil, fmt.Errorf("mmapfile: record size must be positive, got %d", recordSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmapfile: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapfile: stat %s: %w", path, err)
	}
	size := info.Size()
	if size%int64(recordSize) != 0 {
		f.Close()
		return nil, fmt.Errorf("mmapfile: %s size %d is not a multiple of record size %d", path, size, recordSize)
	}

	var data []byte
	if size > 0 {
		data, err = mmap(f, int(size))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("mmapfile: mmap %s: %w", path, err)
		}
	}

	return &File{f: f, data: data, recordSize: recordSize}, nil
}

// NumRecords returns the number of fixed-size records in the file.
func (mf *File) NumRecords() int {
	if mf.recordSize == 0 {
		return 0
	}
	return len(mf.data) / mf.recordSize
}

// Record returns the i-th record's raw bytes. The returned slice aliases
// the mapped region and must not be mutated or retained past Close.
func (mf *File) Record(i int) []byte {
	off := i * mf.recordSize
	return mf.data[off : off+mf.recordSize]
}

// Bytes returns the whole mapped region.
func (mf *File) Bytes() []byte {
	return mf.data
}

// Close unmaps the file and closes the underlying descriptor.
func (mf *File) Close() error {
	var err error
	if mf.data != nil {
		err = munmap(mf.data)
		mf.data = nil
	}
	if cerr := mf.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
