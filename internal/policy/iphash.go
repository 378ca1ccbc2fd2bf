package policy

import (
	"hash/fnv"

	"github.com/felipeagger/htlb/internal/backend"
)

// ipHashStrategy maps a client IP to a stable backend index via a 31-bit
// FNV-1a hash. The same client IP routed against the same set yields the
// same backend; set changes due to availability flips may reroute, and that
// is intentional.
type ipHashStrategy struct{}

func (s *ipHashStrategy) Name() string { return IPHash }

func (s *ipHashStrategy) Select(available []*backend.Backend, clientIP string) *backend.Backend {
	if len(available) == 0 {
		return nil
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(clientIP))
	hash := h.Sum32() & 0x7fffffff

	return available[int(hash)%len(available)]
}
