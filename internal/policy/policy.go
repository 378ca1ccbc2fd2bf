// Package policy implements the pluggable backend-selection strategies: a
// tagged variant chosen once at startup rather than a subclass hierarchy.
package policy

import (
	"fmt"

	"github.com/felipeagger/htlb/internal/backend"
)

// Names of the supported strategies, matching the configuration record's
// algorithm field.
const (
	RoundRobin      = "round-robin"
	LeastConns      = "least-connections"
	IPHash          = "ip-hash"
)

// Strategy chooses one backend from a set of currently-available backends
// for a given client IP. It returns nil iff available is empty. A Strategy
// must be safe for concurrent invocation.
type Strategy interface {
	Select(available []*backend.Backend, clientIP string) *backend.Backend
	Name() string
}

// New builds the Strategy named by name. Unknown names return an error,
// which the lifecycle controller reports as a start failure.
func New(name string) (Strategy, error) {
	switch name {
	case RoundRobin:
		return &roundRobinStrategy{}, nil
	case LeastConns:
		return &leastConnsStrategy{}, nil
	case IPHash:
		return &ipHashStrategy{}, nil
	default:
		return nil, fmt.Errorf("policy: unknown selection strategy %q", name)
	}
}
