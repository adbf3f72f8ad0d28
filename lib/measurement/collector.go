// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package measurement

import (
	"maps"
	"slices"
	"sync"
)

// Collector accumulates measurements written by application code and
// produces Table snapshots on demand for a reporter.
//
// Thread-safe: all methods may be called concurrently. Writers hold
// the lock only long enough to update one cell, so a snapshot in
// progress never blocks collection for longer than a slice copy.
type Collector struct {
	mu    sync.Mutex
	table Table
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{table: Table{index: make(map[cellKey]int)}}
}

// Set records the current value of a gauge-like measurement,
// replacing any previous value for (name, tags). Empty names are
// ignored.
func (c *Collector) Set(name string, tags map[string]string, value any) {
	if name == "" {
		return
	}
	key := keyOf(name, tags)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table.put(key, name, tags, value)
}

// Add increments a counter-like measurement by delta. A cell that
// does not yet exist, or that holds a non-float64 value, starts from
// zero. Empty names are ignored.
func (c *Collector) Add(name string, tags map[string]string, delta float64) {
	if name == "" {
		return
	}
	key := keyOf(name, tags)
	c.mu.Lock()
	defer c.mu.Unlock()
	if position, ok := c.table.index[key]; ok {
		current, _ := c.table.cells[position].Value.(float64)
		c.table.cells[position].Value = current + delta
		return
	}
	c.table.put(key, name, tags, delta)
}

// Snapshot returns an immutable copy of the current measurements.
// The collector keeps its values; counters continue from where they
// were.
func (c *Collector) Snapshot() *Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Tag maps are never mutated after insertion, so the snapshot can
	// share them with the collector.
	return &Table{
		cells: slices.Clone(c.table.cells),
		index: maps.Clone(c.table.index),
	}
}

// Reset discards every measurement.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = Table{index: make(map[cellKey]int)}
}

// Len returns the number of distinct (name, tags) cells collected.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.table.cells)
}
