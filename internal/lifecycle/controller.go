// Package lifecycle owns the ordered bring-up and tear-down of the dispatch
// core and health supervisor, lifted from the teacher's inline main()
// wiring (construct the load balancer, start the health loop, start the
// listener) into a reusable, idempotent type, per spec §9's redesign note:
// "A single lifecycle controller owns both; pass references explicitly
// rather than relying on a process-wide singleton."
package lifecycle

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/felipeagger/htlb/internal/backend"
	"github.com/felipeagger/htlb/internal/config"
	"github.com/felipeagger/htlb/internal/health"
	"github.com/felipeagger/htlb/internal/policy"
	"github.com/felipeagger/htlb/internal/proxy"
	"github.com/felipeagger/htlb/internal/status"
)

// Controller drives Start/Stop for the whole proxy. Both operations are
// idempotent: Start refuses if already running, Stop refuses if not.
type Controller struct {
	cfg    *config.Config
	logger *slog.Logger

	mu         sync.Mutex
	running    bool
	backends   backend.Set
	strategy   policy.Strategy
	acceptor   *proxy.Acceptor
	supervisor *health.Supervisor
}

// New constructs a Controller from a loaded, validated configuration.
func New(cfg *config.Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{cfg: cfg, logger: logger}
}

// Start brings up the backend set, selection strategy, health supervisor
// (if enabled), and acceptor, in that order. A failure partway through runs
// the stop path before returning the error.
func (c *Controller) Start() (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("lifecycle: already running")
	}

	defer func() {
		if err != nil {
			c.stopLocked()
		}
	}()

	c.backends = buildBackends(c.cfg.Backends)

	c.strategy, err = policy.New(c.cfg.Algorithm)
	if err != nil {
		return fmt.Errorf("lifecycle: %w", err)
	}

	if c.cfg.HealthCheck.Enabled {
		interval, _ := config.ParseDurationOrSeconds(c.cfg.HealthCheck.Interval)
		timeout, _ := config.ParseDurationOrSeconds(c.cfg.HealthCheck.Timeout)
		c.supervisor = health.New(c.backends, health.Config{
			Interval:           interval,
			Timeout:            timeout,
			Path:               c.cfg.HealthCheck.Path,
			UnhealthyThreshold: c.cfg.HealthCheck.UnhealthyThreshold,
			HealthyThreshold:   c.cfg.HealthCheck.HealthyThreshold,
		}, c.logger)
		c.supervisor.Start()
	}

	c.acceptor = &proxy.Acceptor{
		Addr:     fmt.Sprintf("%s:%d", c.cfg.Server.Host, c.cfg.Server.Port),
		PoolSize: c.cfg.Server.ThreadPoolSize,
		Handler:  &proxy.Handler{Backends: c.backends, Strategy: c.strategy, Logger: c.logger},
		Logger:   c.logger,
	}
	if err = c.acceptor.Start(); err != nil {
		return fmt.Errorf("lifecycle: bind failed: %w", err)
	}

	c.running = true
	return nil
}

// Stop tears down the acceptor and supervisor, in reverse start order. It
// refuses if the controller is not running.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return fmt.Errorf("lifecycle: not running")
	}
	c.stopLocked()
	c.running = false
	return nil
}

func (c *Controller) stopLocked() {
	if c.acceptor != nil {
		c.acceptor.Stop()
		c.acceptor = nil
	}
	if c.supervisor != nil {
		c.supervisor.Stop()
		c.supervisor = nil
	}
}

// IsRunning reports whether the controller is currently started.
func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Status produces a plain-data snapshot of the listen address, policy name,
// and every backend's (address, availability, connections, weight).
func (c *Controller) Status() status.Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := status.Report{Running: c.running}
	if c.cfg != nil {
		report.ListenAddress = fmt.Sprintf("%s:%d", c.cfg.Server.Host, c.cfg.Server.Port)
		report.Policy = c.cfg.Algorithm
	}
	for _, b := range c.backends {
		report.Backends = append(report.Backends, status.BackendStatus{
			Address:           b.Address(),
			Available:         b.Available(),
			ActiveConnections: b.ActiveConnections(),
			Weight:            b.Weight,
		})
	}
	return report
}

func buildBackends(configured []config.Backend) backend.Set {
	set := make(backend.Set, len(configured))
	for i, b := range configured {
		set[i] = backend.New(b.Host, b.Port, b.Weight)
	}
	return set
}
