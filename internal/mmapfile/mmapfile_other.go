// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build !unix

package mmapfile

import "os"

// mmap falls back to a plain read on non-unix platforms; it is
// functionally equivalent (the data ends up read-only in process
// memory) but forgoes the shared page-cache backing a true mapping
// gives on unix.
func mmap(f *os.File, length int) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}

func munmap(b []byte) error {
	return nil
}
