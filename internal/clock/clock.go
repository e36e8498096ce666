// Package clock provides the monotonic device clock. Timestamps are uptime
// since boot, never wall-clock, so they hold without calendar sync.
package clock

import (
	"sync"
	"time"
)

// Clock reports device uptime.
type Clock interface {
	Now() time.Duration
}

// Monotonic measures uptime from the moment it was created.
type Monotonic struct {
	boot time.Time
}

func New() *Monotonic {
	return &Monotonic{boot: time.Now()}
}

// Now uses the monotonic reading embedded in time.Time.
func (m *Monotonic) Now() time.Duration {
	return time.Since(m.boot)
}

// Manual is a clock driven by tests.
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

func NewManual(start time.Duration) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(d time.Duration) {
	m.mu.Lock()
	m.now = d
	m.mu.Unlock()
}

func (m *Manual) Advance(d time.Duration) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
	return m.now
}
