// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Command irismpc is the single multi-subcommand driver for the
// privacy-preserving iris distance-matching system (spec.md §6): it can
// generate synthetic template data, prepare an enrolled database's mask
// and share files, serve as a Participant, coordinate queries as a
// Resolver, or benchmark a Participant's reply throughput.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	_ "github.com/irisshare/irismpc/internal/automaxprocs"
	"github.com/irisshare/irismpc/internal/metrics"
)

var cli struct {
	Generate    GenerateCmd    `cmd:"" help:"Emit a JSON array of random templates."`
	Prepare     PrepareCmd     `cmd:"" help:"Split templates into a mask file and N share files."`
	Participant ParticipantCmd `cmd:"" help:"Serve distance queries from a share file."`
	Resolver    ResolverCmd    `cmd:"" aliases:"coordinator" help:"Coordinate queries against one or more participants."`
	Benchmark   BenchmarkCmd   `cmd:"" help:"Measure a participant's reply throughput."`

	MetricsListen string `help:"Prometheus metrics listen address, empty disables it." default:""`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("irismpc"),
		kong.Description("Privacy-preserving iris-biometric distance matching via additive secret sharing."),
		kong.UsageOnError(),
	)

	if err := metrics.Serve(cli.MetricsListen); err != nil {
		slog.Error("Failed to start metrics listener", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := ctx.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "irismpc:", err)
		os.Exit(1)
	}
}
