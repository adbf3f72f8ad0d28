// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	_ Clock = (*FakeClock)(nil)
	_ Clock = Real()
)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	if got, want := clock.Now(), epoch.Add(5*time.Second); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockAfter(t *testing.T) {
	clock := Fake(epoch)
	channel := clock.After(3 * time.Second)

	clock.Advance(2 * time.Second)
	select {
	case <-channel:
		t.Fatal("After fired before its deadline")
	default:
	}

	clock.Advance(time.Second)
	select {
	case fired := <-channel:
		if !fired.Equal(epoch.Add(3 * time.Second)) {
			t.Errorf("fired at %v, want the deadline", fired)
		}
	default:
		t.Fatal("After did not fire at its deadline")
	}
	if clock.PendingCount() != 0 {
		t.Errorf("PendingCount = %d after firing, want 0", clock.PendingCount())
	}
}

func TestFakeClockAfterNonPositive(t *testing.T) {
	clock := Fake(epoch)
	for _, d := range []time.Duration{0, -time.Second} {
		select {
		case <-clock.After(d):
		default:
			t.Errorf("After(%v) should be ready immediately", d)
		}
	}
	if clock.PendingCount() != 0 {
		t.Errorf("PendingCount = %d, want 0", clock.PendingCount())
	}
}

func TestFakeClockTicker(t *testing.T) {
	clock := Fake(epoch)
	ticker := clock.NewTicker(time.Minute)
	defer ticker.Stop()

	for i := 1; i <= 3; i++ {
		clock.Advance(time.Minute)
		select {
		case tick := <-ticker.C:
			if want := epoch.Add(time.Duration(i) * time.Minute); !tick.Equal(want) {
				t.Errorf("tick %d at %v, want %v", i, tick, want)
			}
		default:
			t.Fatalf("tick %d not delivered", i)
		}
	}
}

func TestFakeClockTickerDropsTicks(t *testing.T) {
	clock := Fake(epoch)
	ticker := clock.NewTicker(time.Second)
	defer ticker.Stop()

	clock.Advance(5 * time.Second)

	select {
	case <-ticker.C:
	default:
		t.Fatal("expected one buffered tick")
	}
	select {
	case <-ticker.C:
		t.Fatal("ticks beyond the buffer should be dropped")
	default:
	}

	// The schedule continues from the last interval boundary.
	clock.Advance(time.Second)
	select {
	case tick := <-ticker.C:
		if !tick.Equal(epoch.Add(6 * time.Second)) {
			t.Errorf("tick at %v, want %v", tick, epoch.Add(6*time.Second))
		}
	default:
		t.Fatal("ticker stopped after dropping ticks")
	}
}

func TestFakeClockTickerStop(t *testing.T) {
	clock := Fake(epoch)
	ticker := clock.NewTicker(time.Second)
	ticker.Stop()

	if clock.PendingCount() != 0 {
		t.Errorf("PendingCount = %d after Stop, want 0", clock.PendingCount())
	}
	clock.Advance(time.Minute)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFakeClockTickerPanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewTicker(0) did not panic")
		}
	}()
	Fake(epoch).NewTicker(0)
}

func TestFakeClockFiresInDeadlineOrder(t *testing.T) {
	clock := Fake(epoch)
	late := clock.After(3 * time.Second)
	early := clock.After(time.Second)

	clock.Advance(10 * time.Second)

	if got := <-early; !got.Equal(epoch.Add(time.Second)) {
		t.Errorf("early fired at %v", got)
	}
	if got := <-late; !got.Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("late fired at %v", got)
	}
}

func TestFakeClockWaitForTimers(t *testing.T) {
	clock := Fake(epoch)
	const goroutines = 10

	var wait sync.WaitGroup
	for range goroutines {
		wait.Go(func() {
			<-clock.After(time.Second)
		})
	}

	clock.WaitForTimers(goroutines)
	clock.Advance(time.Second)
	wait.Wait()
}
