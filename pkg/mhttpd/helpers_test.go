package mhttpd

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/zorxx/mhttpd/pkg/mhttpd/metrics"
	"github.com/zorxx/mhttpd/pkg/mhttpd/rxbuf"
)

// newSocketPair gives a test a connected pair of blocking Unix-domain
// sockets: one end stands in for the accepted client fd a Connection
// owns, the other lets the test read whatever the server wrote or write
// whatever the server should receive.
func newSocketPair(t *testing.T) (serverFD, peerFD int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.RxBufferSize == 0 {
		cfg.RxBufferSize = 4096
	}
	if cfg.Logger == nil {
		cfg.Logger = cfg.logger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRecorder()
	}
	return &Server{
		cfg:      cfg,
		running:  true,
		rxPool:   rxbuf.NewPool(cfg.RxBufferSize),
		listenFD: -1,
	}
}

// newTestConnection wires a Connection to one end of a fresh socket pair
// and registers it on srv, returning the other end for the test to read
// from or write to.
func newTestConnection(t *testing.T, srv *Server) (*Connection, int) {
	t.Helper()
	serverFD, peerFD := newSocketPair(t)
	conn := newConnection(srv, serverFD, "127.0.0.1:9", srv.rxPool.Get())
	srv.conns = append(srv.conns, conn)
	return conn, peerFD
}

// deliver appends chunk to c's receive buffer and drives the state
// machine exactly as handleReceive does after a successful read, without
// touching the socket. It fails the test on a parse error or an underrun.
func deliver(t *testing.T, c *Connection, chunk []byte) {
	t.Helper()
	if c.rxSize+len(chunk) > len(c.rx) {
		t.Fatalf("test receive buffer too small: have %d, need %d", len(c.rx), c.rxSize+len(chunk))
	}
	copy(c.rx[c.rxSize:], chunk)
	c.rxSize += len(chunk)

	for {
		res := c.step()
		if res.err {
			t.Fatalf("parse error in state %d", c.state)
		}
		if res.consumed > 0 {
			if res.consumed > c.rxSize {
				t.Fatalf("underrun: consumed %d > rxSize %d", res.consumed, c.rxSize)
			}
			rxbuf.Shift(c.rx, res.consumed, c.rxSize)
			c.rxSize -= res.consumed
		}
		if !res.cont {
			return
		}
	}
}

func readAll(t *testing.T, fd int, max int) []byte {
	t.Helper()
	buf := make([]byte, max)
	n, err := unix.Read(fd, buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return buf[:n]
}
