package lifecycle

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/felipeagger/htlb/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return port
}

func TestControllerStartStopLifecycle(t *testing.T) {
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	}))
	defer backendSrv.Close()

	host, portStr, _ := net.SplitHostPort(backendSrv.Listener.Addr().String())
	backendPort, _ := strconv.Atoi(portStr)
	proxyPort := freePort(t)

	cfg := &config.Config{
		Server:    config.Server{Host: "127.0.0.1", Port: proxyPort, ThreadPoolSize: 4},
		Algorithm: "round-robin",
		Backends:  []config.Backend{{Host: host, Port: backendPort, Weight: 1}},
		HealthCheck: config.HealthCheck{
			Enabled: false,
		},
		Logging: config.Logging{Level: "INFO"},
	}

	c := New(cfg, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !c.IsRunning() {
		t.Fatal("expected IsRunning() true after Start")
	}

	if err := c.Start(); err == nil {
		t.Fatal("expected second Start to refuse")
	}

	report := c.Status()
	if report.Policy != "round-robin" || len(report.Backends) != 1 {
		t.Fatalf("unexpected status report: %+v", report)
	}

	time.Sleep(20 * time.Millisecond)

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if c.IsRunning() {
		t.Fatal("expected IsRunning() false after Stop")
	}
	if err := c.Stop(); err == nil {
		t.Fatal("expected second Stop to refuse")
	}
}

func TestControllerStartFailsOnUnknownAlgorithm(t *testing.T) {
	cfg := &config.Config{
		Server:      config.Server{Host: "127.0.0.1", Port: freePort(t), ThreadPoolSize: 4},
		Algorithm:   "bogus",
		Backends:    []config.Backend{{Host: "127.0.0.1", Port: 1, Weight: 1}},
		HealthCheck: config.HealthCheck{Enabled: false},
		Logging:     config.Logging{Level: "INFO"},
	}

	c := New(cfg, nil)
	if err := c.Start(); err == nil {
		t.Fatal("expected Start to fail for unknown algorithm")
	}
	if c.IsRunning() {
		t.Fatal("a failed Start must not leave the controller running")
	}
}
