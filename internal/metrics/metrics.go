// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package metrics registers the Prometheus collectors emitted by the
// resolver and participant binaries and serves them over HTTP, grounded
// on the wiring in cmd/infra/stupgrades/main.go (promhttp.Handler on a
// dedicated listener) and the collector layout in
// cmd/syncthing/discosrv/stats.go.
package metrics

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/irisshare/irismpc/internal/slogutil"
)

var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irismpc",
			Subsystem: "resolver",
			Name:      "queries_total",
			Help:      "Number of queries processed, by outcome.",
		}, []string{"result"})
	QueryDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "irismpc",
			Subsystem: "resolver",
			Name:      "query_duration_seconds",
			Help:      "Latency of a full DRAFT..REPORT query cycle.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"})
	CorruptLanesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "irismpc",
			Subsystem: "resolver",
			Name:      "corrupt_lanes_total",
			Help:      "Number of reconstructed lanes flagged corrupt (odd diff or unequal count > denominator).",
		})

	TilesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irismpc",
			Subsystem: "kernel",
			Name:      "tiles_processed_total",
			Help:      "Number of database tiles processed, by kernel.",
		}, []string{"kernel"})
	TileDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "irismpc",
			Subsystem: "kernel",
			Name:      "tile_duration_seconds",
			Help:      "Wall time spent processing one tile.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kernel"})

	ParticipantConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irismpc",
			Subsystem: "participant",
			Name:      "connections_total",
			Help:      "Number of inbound connections accepted, by outcome.",
		}, []string{"result"})
	ParticipantEntriesServedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "irismpc",
			Subsystem: "participant",
			Name:      "entries_served_total",
			Help:      "Number of share-file entries streamed back to resolvers.",
		})
)

func init() {
	prometheus.MustRegister(
		QueriesTotal, QueryDurationSeconds, CorruptLanesTotal,
		TilesProcessedTotal, TileDurationSeconds,
		ParticipantConnectionsTotal, ParticipantEntriesServedTotal,
	)
	prometheus.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
		Namespace: "irismpc",
		PidFn: func() (int, error) {
			return os.Getpid(), nil
		},
	}))
}

// Serve starts an HTTP listener exposing /metrics at addr and runs its
// accept loop in a background goroutine. An empty addr is a no-op,
// matching cmd/irismpc's optional root-level "MetricsListen" flag, which
// applies to every subcommand.
func Serve(addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	slog.Info("Metrics listener started", slogutil.Address(addr))
	go func() {
		if err := http.Serve(ln, mux); err != nil {
			slog.Warn("Metrics server returned", slogutil.Error(err))
		}
	}()
	return nil
}
