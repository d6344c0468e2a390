// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Production code takes a [Clock] and receives [Real]. Tests pass a
// [FakeClock] from [Fake], whose time moves only when Advance is
// called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	server := &bridge.Server{Clock: c, ...}
//	// ... trigger an accept failure ...
//	c.WaitForTimers(1)          // the accept loop is now backing off
//	c.Advance(5 * time.Millisecond)
//
// WaitForTimers closes the race between a goroutine registering a
// timer and the test advancing past it.
package clock
