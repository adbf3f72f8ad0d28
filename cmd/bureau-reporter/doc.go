// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Bureau-reporter periodically reports process and host measurements
// for one service instance to the metrics collector.
//
// Every report.interval it records Go runtime and host statistics
// into an in-memory collector, snapshots it, and uploads the snapshot
// as one gzip-compressed JSON report stamped with the current time.
// The outcome of each report is itself counted
// (reporter.reports{outcome=...}) and shipped with the next one. On
// SIGINT or SIGTERM it sends a final report and exits.
//
// With --dump, each reported snapshot replaces the given file (CBOR
// for *.cbor, JSON otherwise), which bureau-report can read back.
package main
