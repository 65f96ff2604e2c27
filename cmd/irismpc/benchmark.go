// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"crypto/rand"
	"fmt"
	"net"
	"time"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/wire"
)

// BenchmarkCmd dials a Participant, sends one Template, and reports
// reply throughput (spec.md §6: "benchmark PARTICIPANT").
type BenchmarkCmd struct {
	Participant string        `arg:"" help:"Participant address to dial."`
	Timeout     time.Duration `help:"Dial timeout." default:"5s"`
}

func (c *BenchmarkCmd) Run() error {
	conn, err := net.DialTimeout("tcp", c.Participant, c.Timeout)
	if err != nil {
		return fmt.Errorf("benchmark: dial %s: %w", c.Participant, err)
	}
	defer conn.Close()

	pattern, err := bitvec.Random(rand.Reader)
	if err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	mask, err := bitvec.Random(rand.Reader)
	if err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	pattern = pattern.And(&mask)
	tmpl := wire.Template{Pattern: pattern, Mask: mask}

	start := time.Now()
	if _, err := tmpl.WriteTo(conn); err != nil {
		return fmt.Errorf("benchmark: send template: %w", err)
	}

	entries := 0
	for {
		_, err := wire.ReadLanes(conn)
		if err != nil {
			break
		}
		entries++
	}
	elapsed := time.Since(start)

	rate := float64(entries) / elapsed.Seconds()
	fmt.Printf("%d entries in %s (%.0f entries/s, %.2f MB/s)\n",
		entries, elapsed, rate, rate*float64(wire.LanesSize)/1e6)
	return nil
}
