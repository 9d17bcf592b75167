// clock.go: Monotonic tick source and wall-clock anchor
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hermes

import (
	"time"

	"github.com/agilira/go-timecache"
)

// TickSource returns a monotonic tick in nanoseconds. It must be cheap
// to read on the hot path.
type TickSource func() uint64

// Clock converts monotonic ticks into wall-clock time. It records a
// (wall, tick) anchor at construction; the wall time of any later tick t
// is anchor wall time + (t - anchor tick).
type Clock struct {
	tick       TickSource
	anchorTick uint64
	anchorWall time.Time
}

// NewClock builds a clock from the given tick source, anchored at the
// given wall time. Pass nil to use the default monotonic source.
func NewClock(tick TickSource, anchor time.Time) *Clock {
	if tick == nil {
		tick = defaultTickSource()
	}
	return &Clock{
		tick:       tick,
		anchorTick: tick(),
		anchorWall: anchor,
	}
}

// newCachedClock anchors against the shared time cache, avoiding a
// syscall on the init path.
func newCachedClock(tc *timecache.TimeCache) *Clock {
	return NewClock(nil, tc.CachedTime())
}

// defaultTickSource reads Go's monotonic clock relative to a fixed base.
func defaultTickSource() TickSource {
	base := time.Now()
	return func() uint64 {
		return uint64(time.Since(base))
	}
}

// Now returns the current tick.
func (c *Clock) Now() uint64 {
	return c.tick()
}

// WallTime reconstructs the wall-clock time of a recorded tick.
func (c *Clock) WallTime(tick uint64) time.Time {
	return c.anchorWall.Add(time.Duration(tick - c.anchorTick))
}
