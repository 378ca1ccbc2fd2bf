package policy

import "github.com/felipeagger/htlb/internal/backend"

// leastConnsStrategy returns the available backend with the fewest active
// connections, first wins on tie. Each backend's counter read is atomic but
// the comparison across backends is not a consistent snapshot; this only
// loosens optimality, never correctness.
type leastConnsStrategy struct{}

func (s *leastConnsStrategy) Name() string { return LeastConns }

func (s *leastConnsStrategy) Select(available []*backend.Backend, clientIP string) *backend.Backend {
	if len(available) == 0 {
		return nil
	}

	selected := available[0]
	min := selected.ActiveConnections()
	for _, b := range available[1:] {
		if c := b.ActiveConnections(); c < min {
			min = c
			selected = b
		}
	}
	return selected
}
