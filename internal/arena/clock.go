package arena

import (
	"sync/atomic"
	"time"
)

// Clock supplies monotonic milliseconds to the Session.
type Clock interface {
	NowMillis() int64
}

// ManualClock is a Clock advanced explicitly, for tests and headless runs.
type ManualClock struct {
	ms atomic.Int64
}

// NowMillis returns the current manual time.
func (c *ManualClock) NowMillis() int64 { return c.ms.Load() }

// Advance moves the clock forward by d, truncated to whole milliseconds.
// Repeated sub-millisecond remainders are lost; use Set to step to
// absolute times.
func (c *ManualClock) Advance(d time.Duration) { c.ms.Add(d.Milliseconds()) }

// Set moves the clock to t since its zero, truncated to milliseconds.
func (c *ManualClock) Set(t time.Duration) { c.ms.Store(t.Milliseconds()) }

// SystemClock reads the monotonic wall clock relative to its creation.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a SystemClock starting at zero.
func NewSystemClock() *SystemClock { return &SystemClock{start: time.Now()} }

// NowMillis returns milliseconds since the clock was created.
func (c *SystemClock) NowMillis() int64 { return time.Since(c.start).Milliseconds() }
