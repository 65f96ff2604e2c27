// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package automaxprocs sets GOMAXPROCS to the cgroup CPU quota, if any,
// on import. This matters here because lib/workerpool sizes its default
// width from runtime.GOMAXPROCS(0): on a cgroup-limited container that
// value is wrong (the host's core count) unless this runs first.
package automaxprocs

import (
	"fmt"
	"log/slog"

	"go.uber.org/automaxprocs/maxprocs"
)

func init() {
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		slog.Debug("automaxprocs", slog.String("msg", fmt.Sprintf(format, args...)))
	})); err != nil {
		slog.Warn("Failed to set GOMAXPROCS from cgroup quota", slog.String("error", err.Error()))
	}
}
