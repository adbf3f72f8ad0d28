// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package report delivers measurement snapshots to a remote metrics
// collector.
//
// A report is a single HTTP request:
//
//	POST <base>/api/v1/datapoints
//	Content-Type: application/gzip
//
// whose body is a gzip-compressed JSON array with one [DataPoint] per
// table cell:
//
//	{"name":"requests.count","timestamp":1000,"value":42,"tags":{"application":"api",...}}
//
// Non-numeric values carry "type":"string". Metric names and tag
// values are restricted to [-A-Za-z0-9./_]; every other character is
// replaced with "_" (see [Sanitize]). Every data point carries the
// instance tags (application, host, environment, pool and the static
// configured tags); per-cell tags override instance tags of the same
// key.
//
// The body is produced lazily. [Encoder] writes one data point per
// [Encoder.Next] call into a gzip stream and finalizes the framing
// exactly once, and [Body] adapts it to the io.Reader that net/http
// drains, so peak memory is proportional to one data point rather
// than to the table.
//
// [Client.Report] never fails from the caller's point of view:
// transport errors and non-204 responses are logged as warnings and
// classified into an [Outcome]. Nothing is retried or queued; the
// next report carries a fresh snapshot.
package report
