package proxy

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// shutdownGrace is how long Stop waits for in-flight handlers to finish
// before it stops waiting and returns.
const shutdownGrace = 10 * time.Second

// Acceptor binds one TCP listener and dispatches accepted connections to a
// bounded pool of worker goroutines.
type Acceptor struct {
	Addr     string
	PoolSize int
	Handler  *Handler
	Logger   *slog.Logger

	listener  net.Listener
	tasks     chan net.Conn
	shutdown  atomic.Bool
	acceptWG  sync.WaitGroup
	workersWG sync.WaitGroup
}

// Start binds the listener and launches the worker pool and accept loop.
func (a *Acceptor) Start() error {
	lc := net.ListenConfig{Control: setListenerSocketOpts}
	ln, err := lc.Listen(context.Background(), "tcp", a.Addr)
	if err != nil {
		return err
	}
	a.listener = ln

	poolSize := a.PoolSize
	if poolSize <= 0 {
		poolSize = 100
	}
	// The bounded pool both caps concurrency and provides backpressure;
	// a bounded channel submission blocks once the pool is saturated.
	a.tasks = make(chan net.Conn, poolSize)

	for i := 0; i < poolSize; i++ {
		a.workersWG.Add(1)
		go a.worker()
	}

	a.acceptWG.Add(1)
	go a.acceptLoop()

	return nil
}

func (a *Acceptor) worker() {
	defer a.workersWG.Done()
	for conn := range a.tasks {
		a.Handler.Handle(conn)
	}
}

func (a *Acceptor) acceptLoop() {
	defer a.acceptWG.Done()

	logger := a.logger()
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if a.shutdown.Load() {
				return
			}
			logger.Warn("accept error", "error", err)
			continue
		}
		a.tasks <- conn
	}
}

// Stop closes the listener, stops accepting new tasks, and waits up to 10s
// for in-flight handlers to complete. Handlers still running after that are
// not interrupted: Stop logs a warning and returns without waiting for them.
func (a *Acceptor) Stop() {
	a.shutdown.Store(true)
	if a.listener != nil {
		_ = a.listener.Close()
	}
	a.acceptWG.Wait()
	if a.tasks == nil {
		// Start failed before the worker pool was created.
		return
	}
	close(a.tasks)

	done := make(chan struct{})
	go func() {
		a.workersWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownGrace):
		a.logger().Warn("forcing shutdown: in-flight handlers exceeded grace period")
	}
}

func (a *Acceptor) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// setListenerSocketOpts enables SO_REUSEADDR so repeated restarts don't hit
// "address in use", and widens SO_RCVBUF/SO_SNDBUF for the accepted sockets,
// mirroring the buffer tuning in the teacher's pkg/utils.go setSocketOpts.
func setListenerSocketOpts(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_RCVBUF, 1<<20)
		_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_SNDBUF, 1<<20)
	})
	if err != nil {
		return err
	}
	return sockErr
}
