// Package health runs the periodic backend probe that flips availability
// with consecutive-failure/success hysteresis, grounded on the teacher's
// time.Ticker-driven health loop (pkg/health.go) generalized from a raw TCP
// dial-and-close probe into an HTTP GET with hysteresis thresholds.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/felipeagger/htlb/internal/backend"
)

// Config carries the supervisor's tunables, mirroring the configuration
// record's health_check block.
type Config struct {
	Interval           time.Duration
	Timeout            time.Duration
	Path               string
	UnhealthyThreshold int
	HealthyThreshold   int
}

// Supervisor periodically probes every backend in a Set and updates its
// availability.
type Supervisor struct {
	backends backend.Set
	cfg      Config
	client   *http.Client
	logger   *slog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New constructs a Supervisor. The HTTP client's timeout is the probe's
// per-request timeout, resolving the open question of plumbing the
// configured timeout into the probe.
func New(backends backend.Set, cfg Config, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		backends: backends,
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

// Start launches the periodic probe loop in a background goroutine.
func (s *Supervisor) Start() {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.probeAll()
			}
		}
	}()
}

// Stop cancels the timer and waits up to 5s for the in-flight tick to
// finish before releasing the HTTP client.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		select {
		case <-s.done:
		case <-time.After(5 * time.Second):
		}
		s.client.CloseIdleConnections()
	})
}

func (s *Supervisor) probeAll() {
	for _, b := range s.backends {
		result := s.probe(b)
		s.updateHealth(b, result)
	}
}

// probeResult is the transient outcome of one probe.
type probeResult struct {
	healthy bool
	elapsed time.Duration
	message string
}

func (s *Supervisor) probe(b *backend.Backend) probeResult {
	url := fmt.Sprintf("http://%s:%d%s", b.Host, b.Port, s.cfg.Path)
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return probeResult{healthy: false, elapsed: time.Since(start), message: err.Error()}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return probeResult{healthy: false, elapsed: time.Since(start), message: err.Error()}
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	if resp.StatusCode == http.StatusOK {
		return probeResult{healthy: true, elapsed: elapsed, message: "OK"}
	}
	return probeResult{healthy: false, elapsed: elapsed, message: fmt.Sprintf("status %d", resp.StatusCode)}
}

func (s *Supervisor) updateHealth(b *backend.Backend, result probeResult) {
	if result.healthy {
		successes := b.IncrementSuccesses()
		if !b.Available() && successes >= int64(s.cfg.HealthyThreshold) {
			b.SetAvailable(true)
			b.ResetSuccesses()
			s.logger.Info("backend recovered", "address", b.Address(), "elapsed", result.elapsed)
		}
		return
	}

	failures := b.IncrementFailures()
	if b.Available() && failures >= int64(s.cfg.UnhealthyThreshold) {
		b.SetAvailable(false)
		s.logger.Error("backend marked unavailable", "address", b.Address(), "failures", failures, "reason", result.message)
	} else if b.Available() {
		s.logger.Warn("backend health check failed", "address", b.Address(),
			"attempt", failures, "threshold", s.cfg.UnhealthyThreshold, "reason", result.message)
	}
}
