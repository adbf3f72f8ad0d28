// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/reporting/lib/clock"
	"github.com/bureau-foundation/reporting/lib/measurement"
	"github.com/bureau-foundation/reporting/lib/report"
	"github.com/bureau-foundation/reporting/lib/snapshot"
)

// reportsMetric counts reports by outcome.
const reportsMetric = "reporter.reports"

// reportClient is the part of *report.Client the reporter uses.
type reportClient interface {
	Report(ctx context.Context, timestampMillis int64, table *measurement.Table) report.Outcome
}

// collectFunc records measurements into a collector. hostmetrics.Collect
// in production.
type collectFunc func(ctx context.Context, collector *measurement.Collector, tags map[string]string) error

// Reporter owns the flush loop. Created in run() and driven by Run.
type Reporter struct {
	client       reportClient
	collector    *measurement.Collector
	collectHost  collectFunc
	clock        clock.Clock
	interval     time.Duration
	finalTimeout time.Duration
	dumpPath     string
	logger       *slog.Logger

	// hostWarned limits incomplete host collection to one warning;
	// later failures are logged at debug level.
	hostWarned bool

	// outcomes is indexed by report.Outcome.
	outcomes [report.OutcomeFailed + 1]atomic.Uint64
}

// Run reports every interval until ctx is canceled, then sends one
// final report bounded by finalTimeout.
func (r *Reporter) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flush(ctx)
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.finalTimeout)
			r.flush(finalCtx)
			cancel()
			return
		}
	}
}

// Count returns the number of reports that ended with outcome.
func (r *Reporter) Count(outcome report.Outcome) uint64 {
	if int(outcome) >= len(r.outcomes) {
		return 0
	}
	return r.outcomes[outcome].Load()
}

// flush collects, snapshots and reports once.
func (r *Reporter) flush(ctx context.Context) {
	if err := r.collectHost(ctx, r.collector, nil); err != nil {
		if !r.hostWarned {
			r.logger.Warn("host measurements incomplete", "error", err)
			r.hostWarned = true
		} else {
			r.logger.Debug("host measurements incomplete", "error", err)
		}
	}

	table := r.collector.Snapshot()
	outcome := r.client.Report(ctx, r.clock.Now().UnixMilli(), table)

	r.outcomes[outcome].Add(1)
	if outcome != report.OutcomeDisabled {
		r.collector.Add(reportsMetric, map[string]string{"outcome": outcome.String()}, 1)
	}

	if r.dumpPath != "" {
		if err := dump(r.dumpPath, table); err != nil {
			r.logger.Warn("writing snapshot dump", "path", r.dumpPath, "error", err)
			return
		}
		r.logger.Debug("wrote snapshot dump", "path", r.dumpPath, "cells", table.Len(), "outcome", outcome.String())
	}
}

// dump replaces the file at path with table. The file is written next
// to its destination and renamed so a reader never sees a partial
// snapshot.
func dump(path string, table *measurement.Table) error {
	data, err := snapshot.Encode(table, snapshot.FormatOf(path))
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(temporary.Name())

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return err
	}
	if err := temporary.Close(); err != nil {
		return err
	}
	return os.Rename(temporary.Name(), path)
}
