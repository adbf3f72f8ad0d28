// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the reporting
// packages.
//
// [RequireReceive] and [RequireClosed] wrap the "select with a
// deadline" pattern used whenever a test waits on a goroutine: a
// collector handler delivering a payload, a flush loop finishing a
// report, a daemon shutting down. They are the only place tests use
// real wall-clock timeouts; everything else runs on lib/clock.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
