// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package kernel implements DistanceKernel and MaskKernel (spec.md
// §4.5): tiled batch processing over a RotationEngine/MaskEngine, so
// that an arbitrarily large database can be dotted against a query
// without materializing every Lanes result (or every database entry) in
// memory at once. Process runs one tile at a time; bounding how many
// tiles are staged ahead of consumption is the caller's job (e.g.
// lib/resolver's Config.MaxInFlightTiles-sized channels), not this
// package's.
// internal/cpufeat sizes the per-entry dot-product unroll width.
package kernel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/irisshare/irismpc/internal/cpufeat"
	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/encvec"
	"github.com/irisshare/irismpc/lib/rotation"
	"github.com/irisshare/irismpc/lib/workerpool"
)

var (
	logCPUFeatOnce sync.Once
	cpuLevel       cpufeat.Level
)

// detectCPUFeat runs cpufeat.Detect() exactly once per process and
// returns the cached result, logging it the first time.
func detectCPUFeat() cpufeat.Level {
	logCPUFeatOnce.Do(func() {
		cpuLevel = cpufeat.Detect()
		slog.Debug("kernel: detected SIMD capability", slog.String("level", cpuLevel.String()), slog.Int("unroll", cpuLevel.UnrollFactor()))
	})
	return cpuLevel
}

// DefaultTileSize is the number of database entries processed per tile
// unless a caller overrides it, bounding peak memory to one tile's
// worth of Lanes results regardless of total database size.
const DefaultTileSize = 20000

// DefaultMaxInFlightTiles bounds how many tiles may be staged (read from
// the database but not yet fully reduced/shipped) at once.
const DefaultMaxInFlightTiles = 4

// Config controls tile sizing and concurrency for both kernels.
type Config struct {
	TileSize         int
	MaxInFlightTiles int
	WorkerPoolWidth  int
}

// DefaultConfig returns the package defaults. WorkerPoolWidth is left at
// 0, meaning workerpool.New falls back to runtime.GOMAXPROCS(0); the
// detected SIMD capability (internal/cpufeat) instead sizes the
// per-entry dot-product unroll factor, set on the engine in
// NewDistanceKernel/NewMaskKernel.
func DefaultConfig() Config {
	return Config{
		TileSize:         DefaultTileSize,
		MaxInFlightTiles: DefaultMaxInFlightTiles,
		WorkerPoolWidth:  0, // 0 -> workerpool.New uses GOMAXPROCS
	}
}

func (c Config) normalized() Config {
	if c.TileSize <= 0 {
		c.TileSize = DefaultTileSize
	}
	if c.MaxInFlightTiles <= 0 {
		c.MaxInFlightTiles = DefaultMaxInFlightTiles
	}
	return c
}

// Tile is one batch's worth of per-entry rotation results, tagged with
// the database offset its first entry corresponds to.
type Tile struct {
	Offset int
	Lanes  []rotation.Lanes
}

// DistanceSource supplies encoded-share records in arbitrary slices, the
// shape both an in-memory []encvec.Vector (wrapped as EncVecSlice) and a
// mmapped lib/store.ShareFile satisfy, so DistanceKernel never needs to
// materialize a whole database to tile over it.
type DistanceSource interface {
	NumRecords() int
	Slice(start, end int) []encvec.Vector
}

// EncVecSlice adapts a plain in-memory slice to DistanceSource, for
// tests and for callers (e.g. an in-process benchmark harness) that
// already hold the whole database in memory.
type EncVecSlice []encvec.Vector

func (s EncVecSlice) NumRecords() int                      { return len(s) }
func (s EncVecSlice) Slice(start, end int) []encvec.Vector { return s[start:end] }

// MaskSource is DistanceSource's counterpart for raw masks.
type MaskSource interface {
	NumRecords() int
	Slice(start, end int) []bitvec.Vector
}

// BitVecSlice adapts a plain in-memory slice to MaskSource.
type BitVecSlice []bitvec.Vector

func (s BitVecSlice) NumRecords() int                      { return len(s) }
func (s BitVecSlice) Slice(start, end int) []bitvec.Vector { return s[start:end] }

// DistanceKernel drives a rotation.DistanceEngine over a streamed
// database in tiles.
type DistanceKernel struct {
	engine *rotation.DistanceEngine
	pool   *workerpool.Pool
	cfg    Config
}

// NewDistanceKernel builds a DistanceKernel for the given query.
func NewDistanceKernel(query encvec.Vector, cfg Config) *DistanceKernel {
	cfg = cfg.normalized()
	engine := rotation.NewDistanceEngine(query)
	engine.SetUnroll(detectCPUFeat().UnrollFactor())
	return &DistanceKernel{
		engine: engine,
		pool:   workerpool.New(cfg.WorkerPoolWidth),
		cfg:    cfg,
	}
}

// Process reads src in Config.TileSize-sized tiles, dots each against
// the query's rotations, and calls emit once per tile in offset order.
// Processing stops and returns ctx.Err() if ctx is cancelled between
// tiles.
func (k *DistanceKernel) Process(ctx context.Context, src DistanceSource, emit func(Tile) error) error {
	n := src.NumRecords()
	for offset := 0; offset < n; offset += k.cfg.TileSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := offset + k.cfg.TileSize
		if end > n {
			end = n
		}
		chunk := src.Slice(offset, end)

		lanes := make([]rotation.Lanes, len(chunk))
		if err := k.engine.BatchProcess(k.pool, chunk, lanes); err != nil {
			return fmt.Errorf("kernel: distance tile at offset %d: %w", offset, err)
		}
		if err := emit(Tile{Offset: offset, Lanes: lanes}); err != nil {
			return err
		}
	}
	return nil
}

// MaskKernel drives a rotation.MaskEngine over a streamed database of
// masks in tiles, producing the denominator side of the protocol.
type MaskKernel struct {
	engine *rotation.MaskEngine
	pool   *workerpool.Pool
	cfg    Config
}

// NewMaskKernel builds a MaskKernel for the given query mask.
func NewMaskKernel(query bitvec.Vector, cfg Config) *MaskKernel {
	cfg = cfg.normalized()
	engine := rotation.NewMaskEngine(query)
	engine.SetUnroll(detectCPUFeat().UnrollFactor())
	return &MaskKernel{
		engine: engine,
		pool:   workerpool.New(cfg.WorkerPoolWidth),
		cfg:    cfg,
	}
}

// Process reads src in tiles and calls emit once per tile, identically
// to DistanceKernel.Process.
func (k *MaskKernel) Process(ctx context.Context, src MaskSource, emit func(Tile) error) error {
	n := src.NumRecords()
	for offset := 0; offset < n; offset += k.cfg.TileSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := offset + k.cfg.TileSize
		if end > n {
			end = n
		}
		chunk := src.Slice(offset, end)

		lanes := make([]rotation.Lanes, len(chunk))
		if err := k.engine.BatchProcess(k.pool, chunk, lanes); err != nil {
			return fmt.Errorf("kernel: mask tile at offset %d: %w", offset, err)
		}
		if err := emit(Tile{Offset: offset, Lanes: lanes}); err != nil {
			return err
		}
	}
	return nil
}
