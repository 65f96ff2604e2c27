// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/irisshare/irismpc/lib/kernel"
	"github.com/irisshare/irismpc/lib/participant"
	"github.com/irisshare/irismpc/lib/store"
)

// ParticipantCmd serves distance queries from one share file (spec.md
// §6: "participant INPUT [BIND]").
type ParticipantCmd struct {
	Input string `arg:"" help:"Share file to serve."`
	Bind  string `arg:"" optional:"" default:"127.0.0.1:1234" help:"Listen address."`

	TileSize         int `help:"Database tile size." default:"20000"`
	MaxInFlightTiles int `help:"Passed to the kernel config; the participant processes one tile at a time and does not use it." default:"4"`
}

func (c *ParticipantCmd) Run() error {
	sf, err := store.OpenShareFile(c.Input)
	if err != nil {
		return fmt.Errorf("participant: %w", err)
	}
	defer sf.Close()

	p := participant.New(sf, kernel.Config{
		TileSize:         c.TileSize,
		MaxInFlightTiles: c.MaxInFlightTiles,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return p.ListenAndServe(ctx, c.Bind)
}
