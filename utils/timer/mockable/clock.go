// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mockable

import (
	"sync"
	"time"
)

// Clock acts as a thin wrapper around global time that allows for easy testing.
// It is safe for concurrent use. The zero value follows wall-clock time.
type Clock struct {
	mu    sync.RWMutex
	faked bool
	time  time.Time
}

// Set the time on the clock
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faked = true
	c.time = t
}

// Advance moves a faked clock forward by [d]. On a clock following wall time
// it first freezes the clock at the current instant.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.faked {
		c.faked = true
		c.time = time.Now()
	}
	c.time = c.time.Add(d)
}

// Sync this clock with global time
func (c *Clock) Sync() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faked = false
}

// Time returns the time on this clock
func (c *Clock) Time() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.faked {
		return c.time
	}
	return time.Now()
}

// Since returns the time elapsed on this clock since [t].
func (c *Clock) Since(t time.Time) time.Duration {
	return c.Time().Sub(t)
}

// Unix returns the unix timestamp on this clock.
func (c *Clock) Unix() uint64 {
	unix := max(c.Time().Unix(), 0)
	return uint64(unix)
}
