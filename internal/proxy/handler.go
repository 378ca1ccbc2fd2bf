// Package proxy wires the accept loop and per-connection handler together:
// selecting a backend, dialing it, and running the framing forwarder once
// per direction.
package proxy

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/felipeagger/htlb/internal/backend"
	"github.com/felipeagger/htlb/internal/forward"
	"github.com/felipeagger/htlb/internal/policy"
)

const (
	connectTimeout = 3 * time.Second
	readTimeout    = 30 * time.Second
)

const serviceUnavailableBody = "Service Unavailable"

// Handler orchestrates one client connection end-to-end: filter, select,
// account, forward.
type Handler struct {
	Backends backend.Set
	Strategy policy.Strategy
	Logger   *slog.Logger
}

// Handle runs the full per-connection contract described in spec §4.4. It
// always closes client.
func (h *Handler) Handle(client net.Conn) {
	defer client.Close()

	reqID := uuid.NewString()
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("req", reqID)

	available := h.Backends.Available()
	if len(available) == 0 {
		logger.Warn("no backend available")
		writeServiceUnavailable(client)
		return
	}

	clientIP := hostOf(client.RemoteAddr())
	selected := h.Strategy.Select(available, clientIP)
	if selected == nil {
		writeServiceUnavailable(client)
		return
	}

	selected.IncrementConnections()
	defer selected.DecrementConnections()

	dialer := net.Dialer{Timeout: connectTimeout, Control: setDialSocketOpts}
	backendConn, err := dialer.Dial("tcp", selected.Address())
	if err != nil {
		logger.Warn("backend connect failed", "backend", selected.Address(), "client", clientIP, "error", err)
		return
	}
	defer backendConn.Close()

	_ = backendConn.SetReadDeadline(time.Now().Add(readTimeout))

	if err := relay(client, backendConn, logger, selected.Address()); err != nil {
		logger.Debug("request forwarding ended", "backend", selected.Address(), "client", clientIP, "error", err)
		return
	}

	logger.Debug("request routed", "backend", selected.Address(), "client", clientIP)
}

// relay runs the forwarder once client -> backend (the request) and once
// backend -> client (the response), strictly sequential: no duplex
// interleaving, which is correct for HTTP/1.1 without pipelining.
func relay(client, backendConn net.Conn, logger *slog.Logger, backendAddr string) error {
	clientReader := bufio.NewReader(client)
	backendReader := bufio.NewReader(backendConn)
	backendWriter := bufio.NewWriter(backendConn)
	clientWriter := bufio.NewWriter(client)

	if err := forward.Message(clientReader, backendWriter, forward.Request); err != nil {
		return fmt.Errorf("request: %w", err)
	}
	if err := forward.Message(backendReader, clientWriter, forward.Response); err != nil {
		return fmt.Errorf("response: %w", err)
	}
	return nil
}

// writeServiceUnavailable writes the minimal 503 response the spec defines
// for "no backend selectable"; the caller closes the connection.
func writeServiceUnavailable(client net.Conn) {
	body := serviceUnavailableBody
	resp := fmt.Sprintf(
		"HTTP/1.1 503 Service Unavailable\r\nContent-Type: text/plain\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		len(body), body,
	)
	_, _ = client.Write([]byte(resp))
}

// setDialSocketOpts disables Nagle's algorithm on the backend connection,
// matching the teacher's pkg/utils.go setSocketOpts: small HTTP request/
// response framing suffers badly from Nagle-induced delay.
func setDialSocketOpts(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

func hostOf(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
