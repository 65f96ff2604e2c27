// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package participant implements the single-query handler spec.md §4.8
// describes: read one plaintext Template off the wire, encode it,
// stream back one 31-lane numerator tuple per locally held share. A
// Participant never sees the mask file and never reconstructs a
// distance — it only returns share-level numerators. Connection
// handling follows the teacher's lib/beacon idiom (a context-cancellable
// listener goroutine, one handler goroutine per accepted connection)
// adapted from UDP broadcast to a TCP per-query responder.
package participant

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/irisshare/irismpc/internal/metrics"
	"github.com/irisshare/irismpc/internal/slogutil"
	"github.com/irisshare/irismpc/lib/encoder"
	"github.com/irisshare/irismpc/lib/kernel"
	"github.com/irisshare/irismpc/lib/protoerr"
	"github.com/irisshare/irismpc/lib/store"
	"github.com/irisshare/irismpc/lib/wire"
)

// Participant serves distance queries against one ShareFile.
type Participant struct {
	shares    *store.ShareFile
	kernelCfg kernel.Config
}

// New returns a Participant backed by shares, using cfg to size
// DistanceKernel tiling for every query it serves.
func New(shares *store.ShareFile, cfg kernel.Config) *Participant {
	return &Participant{shares: shares, kernelCfg: cfg}
}

// ListenAndServe accepts connections on addr until ctx is cancelled,
// handling each on its own goroutine. It returns nil on a clean
// cancellation and a wrapped error otherwise.
func (p *Participant) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("participant: listen %s: %w", addr, protoErrIO(err))
	}
	slog.Info("Participant listening", slogutil.Address(addr))
	return p.Serve(ctx, ln)
}

// Serve runs the accept loop against an already-bound listener, letting
// callers (and tests) bind their own listener — e.g. on an ephemeral
// port — instead of going through ListenAndServe's net.Listen call.
func (p *Participant) Serve(ctx context.Context, ln net.Listener) error {
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
			return fmt.Errorf("participant: accept: %w", protoErrIO(err))
		}
		go p.handle(ctx, conn)
	}
}

func (p *Participant) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	addr := conn.RemoteAddr()

	var tmpl wire.Template
	if _, err := tmpl.ReadFrom(conn); err != nil {
		metrics.ParticipantConnectionsTotal.WithLabelValues("error").Inc()
		slog.Warn("Participant failed to read query", slogutil.Address(addr), slogutil.Error(err))
		return
	}

	query := encoder.Encode(tmpl.Pattern, tmpl.Mask)
	k := kernel.NewDistanceKernel(query, p.kernelCfg)

	bw := bufio.NewWriter(conn)
	served := 0
	err := k.Process(ctx, p.shares, func(tile kernel.Tile) error {
		for _, lanes := range tile.Lanes {
			if err := wire.WriteLanes(bw, lanes); err != nil {
				return err
			}
		}
		served += len(tile.Lanes)
		return nil
	})
	if flushErr := bw.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		metrics.ParticipantConnectionsTotal.WithLabelValues("error").Inc()
		slog.Warn("Participant query failed", slogutil.Address(addr), slogutil.Error(err))
		return
	}

	metrics.ParticipantConnectionsTotal.WithLabelValues("success").Inc()
	metrics.ParticipantEntriesServedTotal.Add(float64(served))
	slog.Info("Participant served query", slogutil.Address(addr), slog.Int("entries", served))
}

func protoErrIO(err error) error {
	return fmt.Errorf("%w: %v", protoerr.ErrIO, err)
}
