package mhttpd

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// createListeningSocket creates a TCP socket, enables address reuse
// (logged, non-fatal if it fails), binds 0.0.0.0:serverPort, switches to
// non-blocking, and listens with backlog MaxQueuedConnections. Any other
// failure closes the socket and returns an error.
//
// golang.org/x/sys/unix is used instead of net.Listen because this
// design needs the raw listening fd for select() in the reactor tick —
// net.Listener deliberately hides the fd and cannot be driven by a
// caller-managed readiness loop.
func createListeningSocket(cfg *Config) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("mhttpd: socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		cfg.logger().Printf("mhttpd: SO_REUSEADDR not enabled: %v", err)
	}

	addr := &unix.SockaddrInet4{Port: int(cfg.ServerPort)}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("mhttpd: bind :%d: %w", cfg.ServerPort, err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("mhttpd: set non-blocking: %w", err)
	}

	if err := unix.Listen(fd, MaxQueuedConnections); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("mhttpd: listen: %w", err)
	}

	return fd, nil
}
