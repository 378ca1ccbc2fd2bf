package health

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/felipeagger/htlb/internal/backend"
)

func backendFromServer(t *testing.T, srv *httptest.Server) *backend.Backend {
	t.Helper()
	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatal(err)
	}
	return backend.New(host, port, 1)
}

func TestHysteresisDoesNotFlipAtExactThreshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := backendFromServer(t, srv)
	s := New(backend.Set{b}, Config{Interval: time.Hour, Timeout: time.Second, Path: "/health", UnhealthyThreshold: 3, HealthyThreshold: 2}, nil)

	for i := 0; i < 3; i++ {
		s.probeAll()
	}
	if !b.Available() {
		t.Fatal("3 consecutive 200s must not flip an already-available backend to unavailable")
	}
}

func TestUnhealthyThresholdFlipsAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := backendFromServer(t, srv)
	s := New(backend.Set{b}, Config{Interval: time.Hour, Timeout: time.Second, Path: "/health", UnhealthyThreshold: 3, HealthyThreshold: 2}, nil)

	s.probeAll()
	s.probeAll()
	if !b.Available() {
		t.Fatal("2 consecutive failures must not yet flip availability (threshold is 3)")
	}
	s.probeAll()
	if b.Available() {
		t.Fatal("3 consecutive failures must flip availability to false")
	}
}

func TestHealthyThresholdRequiresExactCount(t *testing.T) {
	var healthy bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	b := backendFromServer(t, srv)
	s := New(backend.Set{b}, Config{Interval: time.Hour, Timeout: time.Second, Path: "/health", UnhealthyThreshold: 1, HealthyThreshold: 2}, nil)

	s.probeAll()
	if b.Available() {
		t.Fatal("backend should be unavailable after one failure (threshold 1)")
	}

	healthy = true
	s.probeAll()
	if b.Available() {
		t.Fatal("one success must not yet recover (healthy threshold is 2)")
	}
	s.probeAll()
	if !b.Available() {
		t.Fatal("two consecutive successes must recover the backend")
	}
}

func TestProbeFailureOnConnectionRefused(t *testing.T) {
	b := backend.New("127.0.0.1", 1, 1) // nothing listens on port 1
	s := New(backend.Set{b}, Config{Interval: time.Hour, Timeout: 200 * time.Millisecond, Path: "/health", UnhealthyThreshold: 1, HealthyThreshold: 2}, nil)

	s.probeAll()
	if b.Available() {
		t.Fatal("connection refused must count as a probe failure")
	}
}

func TestStartStopIsClean(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := backendFromServer(t, srv)
	s := New(backend.Set{b}, Config{Interval: 50 * time.Millisecond, Timeout: time.Second, Path: "/health", UnhealthyThreshold: 3, HealthyThreshold: 2}, nil)
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Stop()
}
