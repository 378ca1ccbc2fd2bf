package policy

import (
	"sync/atomic"

	"github.com/felipeagger/htlb/internal/backend"
)

// roundRobinStrategy implements weighted round-robin selection. It owns a
// single monotonically increasing counter, advanced atomically once per
// call; the counter is policy state, never per-request state. Wrapping is
// semantically irrelevant because selection always reduces the counter
// modulo the current total weight.
type roundRobinStrategy struct {
	counter atomic.Uint32
}

func (s *roundRobinStrategy) Name() string { return RoundRobin }

func (s *roundRobinStrategy) Select(available []*backend.Backend, clientIP string) *backend.Backend {
	if len(available) == 0 {
		return nil
	}

	var total int
	for _, b := range available {
		total += b.Weight
	}
	if total <= 0 {
		// Every backend has non-positive weight; fall back to plain
		// sequence order instead of dividing by zero.
		c := s.counter.Add(1) - 1
		return available[int(c)%len(available)]
	}

	c := s.counter.Add(1) - 1
	k := int(c) % total

	sum := 0
	for _, b := range available {
		sum += b.Weight
		if k < sum {
			return b
		}
	}
	// Unreachable given k < total, but keep a deterministic fallback.
	return available[len(available)-1]
}
