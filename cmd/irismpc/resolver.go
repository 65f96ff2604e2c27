// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/kernel"
	"github.com/irisshare/irismpc/lib/rand"
	"github.com/irisshare/irismpc/lib/resolver"
	"github.com/irisshare/irismpc/lib/store"
	"github.com/irisshare/irismpc/lib/wire"
)

// ResolverCmd coordinates queries against one or more Participants
// (spec.md §6: "resolver --masks FILE [--share FILE] --bind ADDR
// PARTICIPANTS…"). Spec.md §9 notes that the reference Resolver's
// DRAFT step only ever drew a random query as a development harness,
// and that "a production implementation needs a request source (REST,
// RPC, or file) — its shape is not specified here". --bind supplies
// one: a client connects, sends one wire.Template, and gets back a
// 16-byte reply (int64 best index, float64 best distance, little-endian;
// index -1 means no match). Omitting --bind falls back to the original
// random-query harness for local testing against share/mask files with
// no caller of its own.
type ResolverCmd struct {
	Masks        string   `help:"Mask file to mmap." required:""`
	Share        string   `help:"Optional locally held share file, folded in without a network hop."`
	Bind         string   `help:"Address to accept query requests on; omit to run the random-query dev harness instead."`
	Participants []string `arg:"" help:"Participant addresses to dial."`

	TileSize         int `help:"Database tile size." default:"20000"`
	MaxInFlightTiles int `help:"Maximum tiles staged concurrently." default:"4"`
	Queries          int `help:"Dev harness: number of random queries to run, 0 for unlimited." default:"10"`
}

func (c *ResolverCmd) Run() error {
	mf, err := store.OpenMaskFile(c.Masks)
	if err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	defer mf.Close()

	cfg := kernel.Config{TileSize: c.TileSize, MaxInFlightTiles: c.MaxInFlightTiles}
	r := resolver.New(mf, c.Participants, cfg)

	if c.Share != "" {
		sf, err := store.OpenShareFile(c.Share)
		if err != nil {
			return fmt.Errorf("resolver: %w", err)
		}
		defer sf.Close()
		r.SetLocalShares(sf)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bind != "" {
		return serveRequests(ctx, r, c.Bind)
	}
	return runDevHarness(ctx, r, c.Queries)
}

func serveRequests(ctx context.Context, r *resolver.Resolver, bind string) error {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("resolver: listen %s: %w", bind, err)
	}
	slog.Info("Resolver accepting query requests", slog.String("bind", bind))

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-done:
		}
	}()
	defer close(done)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("resolver: accept: %w", err)
		}
		go handleRequest(ctx, r, conn)
	}
}

func handleRequest(ctx context.Context, r *resolver.Resolver, conn net.Conn) {
	defer conn.Close()

	var tmpl wire.Template
	if _, err := tmpl.ReadFrom(conn); err != nil {
		slog.Warn("Resolver failed to read request", slog.String("error", err.Error()))
		return
	}

	result, err := r.Query(ctx, tmpl)
	if err != nil {
		slog.Warn("Resolver query failed", slog.String("error", err.Error()))
		return
	}

	var reply [16]byte
	index := int64(result.BestIndex)
	if math.IsInf(result.BestDistance, 1) {
		index = -1
	}
	binary.LittleEndian.PutUint64(reply[0:8], uint64(index))
	binary.LittleEndian.PutUint64(reply[8:16], math.Float64bits(result.BestDistance))
	if _, err := conn.Write(reply[:]); err != nil {
		slog.Warn("Resolver failed to write reply", slog.String("error", err.Error()))
	}
}

func runDevHarness(ctx context.Context, r *resolver.Resolver, n int) error {
	for i := 0; n <= 0 || i < n; i++ {
		if ctx.Err() != nil {
			return nil
		}
		pattern, err := bitvec.Random(rand.Reader)
		if err != nil {
			return fmt.Errorf("resolver: draft query: %w", err)
		}
		mask, err := bitvec.Random(rand.Reader)
		if err != nil {
			return fmt.Errorf("resolver: draft query: %w", err)
		}
		pattern = pattern.And(&mask)

		result, err := r.Query(ctx, wire.Template{Pattern: pattern, Mask: mask})
		if err != nil {
			slog.Warn("Query failed", slog.Int("query", i), slog.String("error", err.Error()))
			continue
		}
		if math.IsInf(result.BestDistance, 1) {
			fmt.Printf("query %d: no match\n", i)
			continue
		}
		fmt.Printf("query %d: best index %d at distance %.6f\n", i, result.BestIndex, result.BestDistance)
	}
	return nil
}
