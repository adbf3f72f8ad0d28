// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the reporter.
//
// Code that stamps reports or waits on a flush interval takes a Clock
// instead of calling time.Now or time.NewTicker directly. Production
// wires Real(); tests wire Fake(), which only moves when Advance is
// called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go reporter.Run(ctx, c)
//	c.WaitForTimers(1)          // the flush loop created its ticker
//	c.Advance(time.Minute)      // deliver exactly one tick
//
// WaitForTimers closes the race between a goroutine registering a
// timer and the test advancing past it.
package clock
