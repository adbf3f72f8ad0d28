// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package measurement holds locally collected metric values in a
// two-dimensional table keyed by metric name and tag set.
//
// A [Table] is an immutable snapshot: one cell per (name, tag set)
// pair, iterated in insertion order. Tables are assembled with a
// [Builder] or taken from a [Collector], which application code
// writes to concurrently while a reporter periodically snapshots it.
//
// Cell values are either numeric (any Go integer or float kind) or an
// arbitrary scalar. The package does not interpret values; encoders
// downstream decide how each kind is represented on the wire.
//
// This package depends on no other Bureau packages.
package measurement
