// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hostmetrics records process and host measurements into a
// measurement.Collector: Go runtime statistics, load averages, memory
// usage and CPU count.
package hostmetrics

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/bureau-foundation/reporting/lib/measurement"
)

// Metric names recorded by Collect.
const (
	Goroutines      = "process.goroutines"
	HeapAllocBytes  = "process.heap.alloc_bytes"
	HeapObjects     = "process.heap.objects"
	GCCount         = "process.gc.count"
	Load1           = "host.load.1m"
	Load5           = "host.load.5m"
	Load15          = "host.load.15m"
	MemoryTotal     = "host.memory.total_bytes"
	MemoryAvailable = "host.memory.available_bytes"
	MemoryUsed      = "host.memory.used_bytes"
	MemoryUsedPct   = "host.memory.used_percent"
	CPULogical      = "host.cpu.logical"
)

// Probes; tests replace them.
var (
	loadAvg       = load.AvgWithContext
	virtualMemory = mem.VirtualMemoryWithContext
	cpuCounts     = cpu.CountsWithContext
)

// Collect records the current process and host measurements into
// collector, tagged with tags. Every probe runs; a probe that fails
// (load averages are not available on every platform) contributes its
// error to the joined result while the others are still recorded.
func Collect(ctx context.Context, collector *measurement.Collector, tags map[string]string) error {
	collectRuntime(collector, tags)

	var errs []error
	if err := collectLoad(ctx, collector, tags); err != nil {
		errs = append(errs, err)
	}
	if err := collectMemory(ctx, collector, tags); err != nil {
		errs = append(errs, err)
	}
	if err := collectCPU(ctx, collector, tags); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func collectRuntime(collector *measurement.Collector, tags map[string]string) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	collector.Set(Goroutines, tags, runtime.NumGoroutine())
	collector.Set(HeapAllocBytes, tags, stats.HeapAlloc)
	collector.Set(HeapObjects, tags, stats.HeapObjects)
	collector.Set(GCCount, tags, stats.NumGC)
}

func collectLoad(ctx context.Context, collector *measurement.Collector, tags map[string]string) error {
	average, err := loadAvg(ctx)
	if err != nil {
		return fmt.Errorf("reading load average: %w", err)
	}
	collector.Set(Load1, tags, average.Load1)
	collector.Set(Load5, tags, average.Load5)
	collector.Set(Load15, tags, average.Load15)
	return nil
}

func collectMemory(ctx context.Context, collector *measurement.Collector, tags map[string]string) error {
	memory, err := virtualMemory(ctx)
	if err != nil {
		return fmt.Errorf("reading virtual memory: %w", err)
	}
	collector.Set(MemoryTotal, tags, memory.Total)
	collector.Set(MemoryAvailable, tags, memory.Available)
	collector.Set(MemoryUsed, tags, memory.Used)
	collector.Set(MemoryUsedPct, tags, memory.UsedPercent)
	return nil
}

func collectCPU(ctx context.Context, collector *measurement.Collector, tags map[string]string) error {
	count, err := cpuCounts(ctx, true)
	if err != nil {
		return fmt.Errorf("counting CPUs: %w", err)
	}
	collector.Set(CPULogical, tags, count)
	return nil
}
