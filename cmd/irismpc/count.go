// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseCount parses a template/share count accepting an optional SI
// suffix (k, M, G; case-insensitive), per spec.md §6's "COUNT accepts SI
// suffixes (1M)". This one-function parser is hand-rolled rather than
// pulled from a library: it is a single strconv.ParseFloat plus a
// multiplier lookup, not worth a dependency.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty count")
	}
	mult := 1.0
	suffix := s[len(s)-1]
	switch suffix {
	case 'k', 'K':
		mult = 1e3
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1e6
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1e9
		s = s[:len(s)-1]
	}
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", s, err)
	}
	return int(f * mult), nil
}
