// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package participant

import (
	"context"
	"crypto/rand"
	"net"
	"testing"
	"time"

	"github.com/irisshare/irismpc/lib/bitvec"
	"github.com/irisshare/irismpc/lib/encoder"
	"github.com/irisshare/irismpc/lib/encvec"
	"github.com/irisshare/irismpc/lib/kernel"
	"github.com/irisshare/irismpc/lib/rotation"
	"github.com/irisshare/irismpc/lib/store"
	"github.com/irisshare/irismpc/lib/wire"
	"github.com/irisshare/irismpc/lib/workerpool"
)

func writeShareFile(t *testing.T, shares []encvec.Vector) *store.ShareFile {
	t.Helper()
	path := t.TempDir() + "/shares.bin"
	w, err := store.CreateShareFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range shares {
		if err := w.Write(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	sf, err := store.OpenShareFile(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sf.Close() })
	return sf
}

func TestParticipantServesQuery(t *testing.T) {
	const n = 23
	shares := make([]encvec.Vector, n)
	for i := range shares {
		v, err := encvec.Random(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		shares[i] = v
	}
	sf := writeShareFile(t, shares)

	p := New(sf, kernel.Config{TileSize: 7, MaxInFlightTiles: 2})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- p.Serve(ctx, ln)
	}()

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	pattern, err := bitvec.Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	mask, err := bitvec.Random(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := wire.Template{Pattern: pattern, Mask: mask}
	if _, err := tmpl.WriteTo(conn); err != nil {
		t.Fatal(err)
	}

	query := encoder.Encode(pattern, mask)
	engine := rotation.NewDistanceEngine(query)
	want := make([]rotation.Lanes, n)
	if err := engine.BatchProcess(workerpool.New(1), shares, want); err != nil {
		t.Fatal(err)
	}

	got, err := wire.ReadLanesBatch(conn, n)
	if err != nil {
		t.Fatalf("reading reply: %v", err)
	}
	if len(got) != n {
		t.Fatalf("expected %d lane tuples, got %d", n, len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %v, want %v", i, got[i], want[i])
		}
	}

	cancel()
	<-serveErr
}
