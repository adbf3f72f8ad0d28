// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package measurement

import (
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Cell is one (metric name, tag set) → value entry of a Table. The
// Tags map belongs to the table and must not be modified.
type Cell struct {
	Name  string
	Tags  map[string]string
	Value any
}

// cellKey identifies a cell independently of tag map iteration order.
// The tag component is a length-prefixed encoding of the sorted
// entries, so distinct tag sets can never produce the same key.
type cellKey struct {
	name string
	tags string
}

func keyOf(name string, tags map[string]string) cellKey {
	if len(tags) == 0 {
		return cellKey{name: name}
	}
	var builder strings.Builder
	for _, key := range slices.Sorted(maps.Keys(tags)) {
		value := tags[key]
		builder.WriteString(strconv.Itoa(len(key)))
		builder.WriteByte(':')
		builder.WriteString(key)
		builder.WriteString(strconv.Itoa(len(value)))
		builder.WriteByte(':')
		builder.WriteString(value)
	}
	return cellKey{name: name, tags: builder.String()}
}

// copyTags returns a private copy of tags. A nil or empty map becomes
// an empty non-nil map so cells always carry a usable Tags value.
func copyTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	maps.Copy(copied, tags)
	return copied
}

// Table is an immutable snapshot of measurements. The zero value and
// a nil *Table are both valid empty tables. Tables are safe for
// concurrent reads.
type Table struct {
	cells []Cell
	index map[cellKey]int
}

// Len returns the number of cells.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.cells)
}

// Get returns the value stored for (name, tags).
func (t *Table) Get(name string, tags map[string]string) (any, bool) {
	if t == nil || t.index == nil {
		return nil, false
	}
	position, ok := t.index[keyOf(name, tags)]
	if !ok {
		return nil, false
	}
	return t.cells[position].Value, true
}

// All iterates over the cells in insertion order.
func (t *Table) All() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		if t == nil {
			return
		}
		for _, cell := range t.cells {
			if !yield(cell) {
				return
			}
		}
	}
}

// Cursor returns a pull iterator positioned before the first cell.
func (t *Table) Cursor() *Cursor {
	return &Cursor{table: t}
}

// Cursor walks a Table one cell at a time. It is not safe for
// concurrent use; create one cursor per consumer.
type Cursor struct {
	table *Table
	next  int
}

// Next returns the next cell, or false when the table is exhausted.
func (c *Cursor) Next() (Cell, bool) {
	if c.next >= c.table.Len() {
		return Cell{}, false
	}
	cell := c.table.cells[c.next]
	c.next++
	return cell, true
}

// Builder assembles a Table. Put calls replace the value of an
// existing (name, tags) cell in place, keeping its original position.
// Build hands the accumulated table to the caller and leaves the
// builder empty, ready for an unrelated table.
type Builder struct {
	table *Table
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Put stores value under (name, tags). The tags map is copied.
func (b *Builder) Put(name string, tags map[string]string, value any) *Builder {
	if b.table == nil {
		b.table = &Table{index: make(map[cellKey]int)}
	}
	b.table.put(keyOf(name, tags), name, tags, value)
	return b
}

// Build returns the assembled table.
func (b *Builder) Build() *Table {
	table := b.table
	b.table = nil
	if table == nil {
		return &Table{}
	}
	return table
}

func (t *Table) put(key cellKey, name string, tags map[string]string, value any) {
	if position, ok := t.index[key]; ok {
		t.cells[position].Value = value
		return
	}
	t.index[key] = len(t.cells)
	t.cells = append(t.cells, Cell{Name: name, Tags: copyTags(tags), Value: value})
}
