// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/rand"
)

// GenerateCmd emits a JSON array of random Templates (spec.md §6:
// "generate PATH [COUNT] [--replace]").
type GenerateCmd struct {
	Path    string `arg:"" help:"Output JSON path."`
	Count   string `arg:"" optional:"" default:"1000" help:"Number of templates, SI suffixes allowed (1M)."`
	Replace bool   `help:"Overwrite Path if it already exists."`
}

func (c *GenerateCmd) Run() error {
	count, err := parseCount(c.Count)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if count <= 0 {
		return fmt.Errorf("generate: count must be positive, got %d", count)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !c.Replace {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(c.Path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("generate: open %s: %w", c.Path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString("[\n"); err != nil {
		return fmt.Errorf("generate: write: %w", err)
	}
	enc := json.NewEncoder(w)
	for i := 0; i < count; i++ {
		pattern, err := bitvec.Random(rand.Reader)
		if err != nil {
			return fmt.Errorf("generate: random pattern: %w", err)
		}
		mask, err := bitvec.Random(rand.Reader)
		if err != nil {
			return fmt.Errorf("generate: random mask: %w", err)
		}
		pattern = pattern.And(&mask) // masked-out pattern bits must be zero, spec.md §3

		if i > 0 {
			if _, err := w.WriteString(","); err != nil {
				return fmt.Errorf("generate: write: %w", err)
			}
		}
		if err := enc.Encode(encodeTemplateJSON(pattern, mask)); err != nil {
			return fmt.Errorf("generate: encode template %d: %w", i, err)
		}
	}
	if _, err := w.WriteString("]\n"); err != nil {
		return fmt.Errorf("generate: write: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("generate: flush: %w", err)
	}
	slog.Info("Generated templates", slog.String("path", c.Path), slog.Int("count", count))
	return nil
}
