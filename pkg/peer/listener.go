package peer

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/peerdex/peerdex/internal/logger"
)

// Listener accepts inbound transfer connections and hands each one to a
// sender goroutine. It is a long-lived resource: accept errors while it
// remains open are logged and the loop continues. Close makes Serve
// return.
type Listener struct {
	ln     net.Listener
	open   atomic.Bool
	wg     sync.WaitGroup
	closed sync.Once

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// Listen binds the transfer endpoint on the given TCP port. Port 0 picks
// a free port; read it back with Port.
func Listen(port int) (*Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to bind transfer port %d: %w", port, err)
	}

	l := &Listener{ln: ln, conns: make(map[net.Conn]struct{})}
	l.open.Store(true)
	logger.Info("transfer listener bound", logger.KeyClientPort, l.Port())
	return l, nil
}

// Port returns the bound TCP port.
func (l *Listener) Port() int {
	return l.ln.Addr().(*net.TCPAddr).Port
}

// Serve accepts connections until the listener is closed. Each accepted
// connection is served on its own goroutine. Serve returns nil after
// Close; any other terminal accept failure is returned.
func (l *Listener) Serve() error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if !l.open.Load() {
				return nil
			}
			logger.Warn("accept failed", logger.KeyError, err)
			continue
		}

		l.track(conn)
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			defer l.untrack(conn)
			ServeConn(conn)
		}()
	}
}

func (l *Listener) track(conn net.Conn) {
	l.mu.Lock()
	l.conns[conn] = struct{}{}
	l.mu.Unlock()
}

func (l *Listener) untrack(conn net.Conn) {
	l.mu.Lock()
	delete(l.conns, conn)
	l.mu.Unlock()
}

// Close stops accepting, severs in-flight connections and waits for
// their sender goroutines to finish. The drain cannot stall on a silent
// peer: closing the connection fails its pending read.
func (l *Listener) Close() error {
	var err error
	l.closed.Do(func() {
		l.open.Store(false)
		err = l.ln.Close()

		l.mu.Lock()
		for conn := range l.conns {
			_ = conn.Close()
		}
		l.mu.Unlock()

		l.wg.Wait()
		logger.Info("transfer listener closed")
	})
	return err
}
