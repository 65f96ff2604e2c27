// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package resolver implements the Resolver side of the protocol (spec.md
// §4.7): DRAFT/DIAL/SEND/STREAM/REPORT. STREAM runs three
// producer/consumer stages over bounded channels — a local denominator
// producer, one numerator producer per dialed Participant, and a
// reconstructor that folds both into the running best match — driven by
// golang.org/x/sync/errgroup the way the teacher's own lib/connections
// dial/listen loops fan out goroutines under one error group.
package resolver

import (
	"context"
	"fmt"
	"math"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/irisshare/irismpc/internal/metrics"
	"github.com/irisshare/irismpc/lib/encoder"
	"github.com/irisshare/irismpc/lib/kernel"
	"github.com/irisshare/irismpc/lib/protoerr"
	"github.com/irisshare/irismpc/lib/reconstruct"
	"github.com/irisshare/irismpc/lib/rotation"
	"github.com/irisshare/irismpc/lib/store"
	"github.com/irisshare/irismpc/lib/wire"
)

// Resolver coordinates one or more Participants against a shared mask
// file, per spec.md §4.7.
type Resolver struct {
	masks        *store.MaskFile
	participants []string
	cfg          kernel.Config
	tileSize     int
	maxInFlight  int

	// localShares, if set, lets the Resolver hold one share of the
	// enrolled database itself and fold its numerators in-process
	// alongside the dialed Participants' — the CLI's "--share FILE"
	// option (spec.md §6), useful for a co-located Participant that
	// shouldn't pay a loopback network round trip.
	localShares *store.ShareFile
}

// New returns a Resolver that will dial participants (in DIAL) and tile
// both sides of the protocol according to cfg. cfg.MaxInFlightTiles
// sizes the capacity of every producer/reconciler channel STREAM opens,
// bounding how many tiles may be staged ahead of reconciliation.
func New(masks *store.MaskFile, participants []string, cfg kernel.Config) *Resolver {
	tileSize := cfg.TileSize
	if tileSize <= 0 {
		tileSize = kernel.DefaultTileSize
	}
	maxInFlight := cfg.MaxInFlightTiles
	if maxInFlight <= 0 {
		maxInFlight = kernel.DefaultMaxInFlightTiles
	}
	return &Resolver{masks: masks, participants: participants, cfg: cfg, tileSize: tileSize, maxInFlight: maxInFlight}
}

// SetLocalShares attaches a ShareFile the Resolver holds itself, folded
// into reconstruction as an additional, non-networked numerator
// producer.
func (r *Resolver) SetLocalShares(sf *store.ShareFile) {
	r.localShares = sf
}

// Result is the outcome of one query.
type Result struct {
	BestIndex    int
	BestDistance float64
	AnyCorrupt   bool
}

// Query runs one full DIAL/SEND/STREAM/REPORT cycle for tmpl against
// every configured Participant and returns the minimum-distance match.
func (r *Resolver) Query(ctx context.Context, tmpl wire.Template) (result Result, err error) {
	result.BestDistance = math.Inf(1)

	conns, err := r.dialAndSend(ctx, tmpl)
	defer closeAll(conns)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}

	result, err = r.stream(ctx, tmpl, conns)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}
	metrics.QueriesTotal.WithLabelValues("success").Inc()
	return result, nil
}

// dialAndSend performs DIAL and SEND: one connection per participant,
// opened and written to in parallel, failing the whole query on any
// single connect or write error.
func (r *Resolver) dialAndSend(ctx context.Context, tmpl wire.Template) ([]net.Conn, error) {
	conns := make([]net.Conn, len(r.participants))
	g, _ := errgroup.WithContext(ctx)
	var dialer net.Dialer
	for i, addr := range r.participants {
		i, addr := i, addr
		g.Go(func() error {
			conn, err := dialer.DialContext(ctx, "tcp", addr)
			if err != nil {
				return fmt.Errorf("resolver: dial %s: %w", addr, wrapIO(err))
			}
			if _, err := tmpl.WriteTo(conn); err != nil {
				return fmt.Errorf("resolver: send template to %s: %w", addr, wrapIO(err))
			}
			conns[i] = conn
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return conns, err
	}
	return conns, nil
}

func closeAll(conns []net.Conn) {
	for _, c := range conns {
		if c != nil {
			c.Close()
		}
	}
}

// stream runs STREAM: the denominator producer, one numerator producer
// per connection, and the reconstructor, all under one errgroup so a
// failure in any stage cancels the others (spec.md §5's cancellation
// requirement).
func (r *Resolver) stream(ctx context.Context, tmpl wire.Template, conns []net.Conn) (Result, error) {
	g, ctx := errgroup.WithContext(ctx)

	denomCh := make(chan kernel.Tile, r.maxInFlight)

	// numChs is built to its final length, local share included, before
	// any producer goroutine is launched: appending to it later while
	// goroutines already hold a captured index into it would race with
	// their reads of the slice header.
	numChs := make([]chan kernel.Tile, len(conns), len(conns)+1)
	for i := range numChs {
		numChs[i] = make(chan kernel.Tile, r.maxInFlight)
	}
	var localCh chan kernel.Tile
	if r.localShares != nil {
		localCh = make(chan kernel.Tile, r.maxInFlight)
		numChs = append(numChs, localCh)
	}

	mk := kernel.NewMaskKernel(tmpl.Mask, r.cfg)
	g.Go(func() error {
		defer close(denomCh)
		return mk.Process(ctx, r.masks, func(t kernel.Tile) error {
			select {
			case denomCh <- t:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	for i, conn := range conns {
		i, conn := i, conn
		g.Go(func() error {
			defer close(numChs[i])
			return r.produceNumerators(ctx, conn, numChs[i])
		})
	}

	if localCh != nil {
		query := encoder.Encode(tmpl.Pattern, tmpl.Mask)
		dk := kernel.NewDistanceKernel(query, r.cfg)
		g.Go(func() error {
			defer close(localCh)
			return dk.Process(ctx, r.localShares, func(t kernel.Tile) error {
				select {
				case localCh <- t:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
		})
	}

	var result Result
	g.Go(func() error {
		var err error
		result, err = reconcile(ctx, r.tileSize, denomCh, numChs)
		return err
	})

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return result, nil
}

// produceNumerators reads fixed-size numerator tuples off conn, one
// tile at a time, and pushes them onto out. A short final read
// (spec.md §4.7/§6) ends the loop without error; any other read error
// is a protocol violation.
func (r *Resolver) produceNumerators(ctx context.Context, conn net.Conn, out chan<- kernel.Tile) error {
	offset := 0
	for {
		lanes, err := wire.ReadLanesBatch(conn, r.tileSize)
		if err != nil {
			return fmt.Errorf("resolver: read numerators: %w", wrapProtocol(err))
		}
		if len(lanes) == 0 {
			return nil
		}
		select {
		case out <- kernel.Tile{Offset: offset, Lanes: lanes}:
		case <-ctx.Done():
			return ctx.Err()
		}
		if len(lanes) < r.tileSize {
			return nil
		}
		offset += len(lanes)
	}
}

// reconcile pulls one denominator tile and one numerator tile from
// every participant channel per round, sums the numerator lanes
// (mod 2^16) across participants, and folds reconstruct.Distance into
// the running best match. A round whose tiles disagree in length is
// truncated to the shortest, matching spec.md §4.7's short-producer
// tolerance; reconciliation stops once any side is exhausted.
func reconcile(ctx context.Context, tileSize int, denomCh <-chan kernel.Tile, numChs []chan kernel.Tile) (Result, error) {
	result := Result{BestDistance: math.Inf(1)}
	for {
		denomTile, ok := recvCtx(ctx, denomCh)
		if !ok {
			return result, ctx.Err()
		}
		if denomTile.Lanes == nil && ctx.Err() == nil {
			return result, nil
		}

		n := len(denomTile.Lanes)
		numTiles := make([][]rotation.Lanes, len(numChs))
		for i, ch := range numChs {
			tile, ok := recvCtx(ctx, ch)
			if !ok {
				return result, ctx.Err()
			}
			numTiles[i] = tile.Lanes
			if len(tile.Lanes) < n {
				n = len(tile.Lanes)
			}
		}

		for local := 0; local < n; local++ {
			var summed rotation.Lanes
			for _, nt := range numTiles {
				lanes := nt[local]
				for k := range summed {
					summed[k] += lanes[k]
				}
			}
			dist, corrupt := reconstruct.Distance(summed, denomTile.Lanes[local])
			if corrupt {
				result.AnyCorrupt = true
				metrics.CorruptLanesTotal.Inc()
			}
			if dist < result.BestDistance {
				result.BestDistance = dist
				result.BestIndex = denomTile.Offset + local
			}
		}

		if n < tileSize {
			return result, nil
		}
	}
}

// recvCtx receives from ch, returning ok=false if ctx is done first. A
// closed channel yields the zero value with ok=true so callers can
// distinguish "producer finished cleanly" from "cancelled".
func recvCtx(ctx context.Context, ch <-chan kernel.Tile) (kernel.Tile, bool) {
	select {
	case t, open := <-ch:
		if !open {
			return kernel.Tile{}, true
		}
		return t, true
	case <-ctx.Done():
		return kernel.Tile{}, false
	}
}

func wrapIO(err error) error {
	return fmt.Errorf("%w: %v", protoerr.ErrIO, err)
}

func wrapProtocol(err error) error {
	return fmt.Errorf("%w: %v", protoerr.ErrProtocol, err)
}
