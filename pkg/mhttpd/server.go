// Package mhttpd implements a minimal embedded HTTP/1.1 server core for
// resource-constrained hosts: a single-threaded, readiness-multiplexed
// reactor driving an incremental byte-buffer request parser and a
// streaming, SSI-aware response writer.
package mhttpd

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/zorxx/mhttpd/pkg/mhttpd/rxbuf"
)

// Server is the process-wide context: it owns the listening socket, the
// configuration and the connection set. It is single-owner — only the
// goroutine calling Process may touch it.
type Server struct {
	cfg      Config
	listenFD int
	running  bool

	conns  []*Connection
	rxPool *rxbuf.Pool
}

// Start validates cfg and brings up the listener.
func Start(cfg Config) (*Server, error) {
	if cfg.RxBufferSize <= 0 {
		return nil, ErrInvalidRxBufferSize
	}
	if cfg.Logger == nil {
		cfg.Logger = cfg.logger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = cfg.metrics()
	}

	listenFD, err := createListeningSocket(&cfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		listenFD: listenFD,
		running:  true,
		rxPool:   rxbuf.NewPool(cfg.RxBufferSize),
	}, nil
}

// Shutdown closes the listening socket and every open connection. After
// Shutdown, Process returns ErrNotRunning.
func (s *Server) Shutdown() error {
	if !s.running {
		return nil
	}
	s.running = false
	// evict removes from s.conns, so iterate over a copy.
	conns := append([]*Connection(nil), s.conns...)
	for _, c := range conns {
		s.evict(c, reasonShutdown)
	}
	return unix.Close(s.listenFD)
}

func (s *Server) logf(format string, args ...interface{}) {
	s.cfg.logger().Printf(format, args...)
}

// Process runs one reactor tick: wait for readiness, service every
// ready/errored connection, then accept at most one new connection. It
// returns nil on success or on a plain timeout; a non-nil
// error means the tick itself (the readiness wait) failed fatally — every
// per-connection failure is handled locally by eviction and never
// reaches the caller.
func (s *Server) Process() error {
	if !s.running {
		return ErrNotRunning
	}

	start := time.Now()
	defer func() {
		s.cfg.metrics().TickDuration(time.Since(start).Seconds())
		s.cfg.metrics().ActiveConnections(len(s.conns))
	}()

	var readSet, errorSet unix.FdSet
	fdZero(&readSet)
	fdZero(&errorSet)
	fdSet(&readSet, s.listenFD)
	fdSet(&errorSet, s.listenFD)
	fdMax := s.listenFD

	snapshot := make([]*Connection, len(s.conns))
	copy(snapshot, s.conns)

	for _, c := range snapshot {
		fdSet(&readSet, c.fd)
		fdSet(&errorSet, c.fd)
		if c.fd > fdMax {
			fdMax = c.fd
		}
	}

	var timeout *unix.Timeval
	if s.cfg.ProcessTimeout > 0 {
		tv := unix.NsecToTimeval(s.cfg.ProcessTimeout.Nanoseconds())
		timeout = &tv
	}

	n, err := unix.Select(fdMax+1, &readSet, nil, &errorSet, timeout)
	if err != nil {
		s.logf("select failed: %v", err)
		for _, c := range snapshot {
			if !fdIsValid(c.fd) {
				s.evict(c, reasonReadFailure)
			}
		}
		return err
	}
	if n == 0 {
		return nil // Timeout, nothing ready.
	}

	for _, c := range snapshot {
		if fdIsSet(&errorSet, c.fd) {
			s.evict(c, reasonReadFailure)
		} else if fdIsSet(&readSet, c.fd) {
			s.handleReceive(c)
		}
	}

	if fdIsSet(&readSet, s.listenFD) {
		s.acceptOne()
	}

	return nil
}

// acceptOne accepts a single pending connection, if any, and appends it
// to the connection set. Order doesn't matter: select-style readiness
// already requires a linear scan over every connection each tick, so
// there's no benefit to inserting at the head the way a linked-list
// design might.
func (s *Server) acceptOne() {
	fd, sa, err := unix.Accept(s.listenFD)
	if err != nil {
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			s.logf("accept failed: %v", err)
		}
		return
	}

	addr := "0.0.0.0:0"
	if sa4, ok := sa.(*unix.SockaddrInet4); ok {
		addr = formatSourceAddress(sa4)
	}

	rx := s.rxPool.Get()
	conn := newConnection(s, fd, addr, rx)
	s.conns = append(s.conns, conn)
	s.cfg.metrics().ConnectionAccepted()
}

// handleReceive reads available bytes into the connection's receive
// buffer, then drives the state machine until it demands more bytes or
// reports a fatal error.
func (s *Server) handleReceive(c *Connection) {
	spaceLeft := s.cfg.RxBufferSize - c.rxSize
	if spaceLeft <= 0 {
		s.evict(c, reasonBufferOverrun)
		return
	}

	n, err := unix.Read(c.fd, c.rx[c.rxSize:c.rxSize+spaceLeft])
	if err != nil || n <= 0 {
		s.evict(c, reasonReadFailure)
		return
	}
	c.rxSize += n

	for {
		res := c.step()
		if res.err {
			s.evict(c, reasonParseFatal)
			return
		}
		if res.consumed > 0 {
			if res.consumed > c.rxSize {
				s.logf("underrun: consumed %d > rxSize %d", res.consumed, c.rxSize)
				s.evict(c, reasonUnderrun)
				return
			}
			rxbuf.Shift(c.rx, res.consumed, c.rxSize)
			c.rxSize -= res.consumed
		}
		if !res.cont {
			return
		}
	}
}

// evict closes a connection's socket, drops its record and returns its
// receive buffer to the pool. This is the sole failure action for every
// per-connection error kind.
func (s *Server) evict(c *Connection, reason string) {
	s.logf("evicting connection %s: %s", c.sourceAddr, reason)
	unix.Close(c.fd)
	s.rxPool.Put(c.rx)
	s.removeConn(c)
	s.cfg.metrics().ConnectionEvicted(reason)
}

func (s *Server) removeConn(c *Connection) {
	for i, other := range s.conns {
		if other == c {
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			return
		}
	}
}

func fdIsValid(fd int) bool {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	return err == nil
}

func formatSourceAddress(sa *unix.SockaddrInet4) string {
	a := sa.Addr
	return ipv4String(a) + ":" + portString(sa.Port)
}
