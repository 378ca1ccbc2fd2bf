// Package backend holds the per-origin records the dispatcher, selection
// policies, and health supervisor all share by reference.
package backend

import (
	"fmt"
	"sync/atomic"
)

// Backend is one configured upstream HTTP origin. Host, Port, and Weight are
// immutable once constructed; the remaining fields are independently atomic
// so handlers (readers) and the health supervisor (writer) never need a lock.
type Backend struct {
	Host   string
	Port   int
	Weight int

	available            atomic.Bool
	activeConnections    atomic.Int64
	consecutiveFailures  atomic.Int64
	consecutiveSuccesses atomic.Int64
}

// New constructs a Backend, available by default.
func New(host string, port, weight int) *Backend {
	b := &Backend{Host: host, Port: port, Weight: weight}
	b.available.Store(true)
	return b
}

// Address returns "host:port".
func (b *Backend) Address() string {
	return fmt.Sprintf("%s:%d", b.Host, b.Port)
}

// Available reports the supervisor-maintained eligibility flag.
func (b *Backend) Available() bool { return b.available.Load() }

// SetAvailable flips the eligibility flag.
func (b *Backend) SetAvailable(v bool) { b.available.Store(v) }

// ActiveConnections returns the current in-flight connection count.
func (b *Backend) ActiveConnections() int64 { return b.activeConnections.Load() }

// IncrementConnections records one more in-flight connection and returns the
// post-increment value.
func (b *Backend) IncrementConnections() int64 { return b.activeConnections.Add(1) }

// DecrementConnections records the completion of one in-flight connection.
func (b *Backend) DecrementConnections() int64 { return b.activeConnections.Add(-1) }

// ConsecutiveFailures returns the current consecutive-failure streak.
func (b *Backend) ConsecutiveFailures() int64 { return b.consecutiveFailures.Load() }

// ConsecutiveSuccesses returns the current consecutive-success streak.
func (b *Backend) ConsecutiveSuccesses() int64 { return b.consecutiveSuccesses.Load() }

// IncrementFailures resets the success streak to zero and increments the
// failure streak, returning its post-increment value. Resetting the other
// counter first maintains the invariant that the two streaks are never both
// positive.
func (b *Backend) IncrementFailures() int64 {
	b.consecutiveSuccesses.Store(0)
	return b.consecutiveFailures.Add(1)
}

// IncrementSuccesses resets the failure streak to zero and increments the
// success streak, returning its post-increment value.
func (b *Backend) IncrementSuccesses() int64 {
	b.consecutiveFailures.Store(0)
	return b.consecutiveSuccesses.Add(1)
}

// ResetFailures zeroes the consecutive-failure streak.
func (b *Backend) ResetFailures() { b.consecutiveFailures.Store(0) }

// ResetSuccesses zeroes the consecutive-success streak.
func (b *Backend) ResetSuccesses() { b.consecutiveSuccesses.Store(0) }

func (b *Backend) String() string {
	return fmt.Sprintf("Backend{%s, weight=%d, available=%t, connections=%d}",
		b.Address(), b.Weight, b.Available(), b.ActiveConnections())
}

// Set is an ordered, fixed sequence of backends determined at startup. Order
// is significant for deterministic selection; the set is never mutated at
// runtime.
type Set []*Backend

// Available returns the subset currently marked available, preserving order.
func (s Set) Available() []*Backend {
	out := make([]*Backend, 0, len(s))
	for _, b := range s {
		if b.Available() {
			out = append(out, b)
		}
	}
	return out
}
