// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/irisshare/irismpc/lib/encoder"
	"github.com/irisshare/irismpc/lib/store"
)

// PrepareCmd reads a Template JSON array and writes one MaskFile and N
// ShareFiles (spec.md §6: "prepare INPUT [COUNT] [OUTPUT]").
type PrepareCmd struct {
	Input  string `arg:"" help:"Template JSON input path."`
	Count  string `arg:"" optional:"" default:"3" help:"Number of additive shares."`
	Output string `arg:"" optional:"" default:"db" help:"Output path prefix."`
}

func (c *PrepareCmd) Run() error {
	shareCount, err := strconv.Atoi(c.Count)
	if err != nil {
		return fmt.Errorf("prepare: invalid share count %q: %w", c.Count, err)
	}
	if shareCount < 1 {
		return fmt.Errorf("prepare: share count must be >= 1, got %d", shareCount)
	}

	in, err := os.Open(c.Input)
	if err != nil {
		return fmt.Errorf("prepare: open %s: %w", c.Input, err)
	}
	defer in.Close()

	reader, err := newTemplateStreamReader(in)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	maskWriter, err := store.CreateMaskFile(c.Output + ".masks")
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer maskWriter.Close()

	shareWriters := make([]*store.ShareWriter, shareCount)
	for i := range shareWriters {
		sw, err := store.CreateShareFile(fmt.Sprintf("%s.share-%d", c.Output, i))
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer sw.Close()
		shareWriters[i] = sw
	}

	n := 0
	for {
		pattern, mask, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("prepare: reading template %d: %w", n, err)
		}

		encoded := encoder.Encode(pattern, mask)
		shares, err := encoder.Share(encoded, shareCount)
		if err != nil {
			return fmt.Errorf("prepare: sharing template %d: %w", n, err)
		}

		if err := maskWriter.Write(mask); err != nil {
			return fmt.Errorf("prepare: writing mask %d: %w", n, err)
		}
		for i, s := range shares {
			if err := shareWriters[i].Write(s); err != nil {
				return fmt.Errorf("prepare: writing share %d/%d: %w", n, i, err)
			}
		}
		n++
	}

	slog.Info("Prepared enrollment database", slog.Int("templates", n), slog.Int("shares", shareCount), slog.String("output", c.Output))
	return nil
}
