package mhttpd

import (
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func listenerPort(t *testing.T, srv *Server) int {
	t.Helper()
	sa, err := unix.Getsockname(srv.listenFD)
	if err != nil {
		t.Fatalf("getsockname: %v", err)
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		t.Fatalf("unexpected sockaddr type %T", sa)
	}
	return sa4.Port
}

// TestStartAcceptServeShutdown drives a real loopback TCP connection
// through Start, a few Process ticks, and Shutdown, exercising the
// reactor end to end rather than just the state machine in isolation.
func TestStartAcceptServeShutdown(t *testing.T) {
	var seen string
	cfg := DefaultConfig()
	cfg.ProcessTimeout = 50 * time.Millisecond
	cfg.GetHandlers = []GetHandlerEntry{
		{URI: "/ping", Handler: func(conn *Connection, target []byte, params [][]byte, sourceAddr string, cookie interface{}) {
			seen = sourceAddr
			body := []byte("pong")
			conn.SendResponse(StatusOK, "text/plain", len(body), "", body)
		}},
	}

	srv, err := Start(cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Shutdown()

	port := listenerPort(t, srv)

	client, err := net.Dial("tcp4", "127.0.0.1:"+strconv.Itoa(port))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	// Accept the pending connection.
	deadline := time.Now().Add(2 * time.Second)
	for len(srv.conns) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for accept")
		}
		if err := srv.Process(); err != nil {
			t.Fatalf("Process (accept): %v", err)
		}
	}

	if _, err := client.Write([]byte("GET /ping HTTP/1.1\r\nHost: h\r\n\r\n")); err != nil {
		t.Fatalf("client write: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4096)
	var n int
	deadline = time.Now().Add(2 * time.Second)
	for {
		if err := srv.Process(); err != nil {
			t.Fatalf("Process (serve): %v", err)
		}
		nn, err := client.Read(buf)
		if nn > 0 {
			n = nn
			break
		}
		if err != nil {
			if time.Now().After(deadline) {
				t.Fatalf("client read: %v", err)
			}
			continue
		}
	}

	got := string(buf[:n])
	if !strings.Contains(got, "pong") {
		t.Fatalf("response = %q, want it to contain pong", got)
	}
	if seen == "" {
		t.Fatalf("handler never recorded a source address")
	}
}

// TestProcessAfterShutdownReturnsErrNotRunning checks Process refuses to
// run another tick once Shutdown has closed the listener.
func TestProcessAfterShutdownReturnsErrNotRunning(t *testing.T) {
	cfg := DefaultConfig()
	srv, err := Start(cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := srv.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := srv.Process(); err != ErrNotRunning {
		t.Fatalf("Process after Shutdown = %v, want ErrNotRunning", err)
	}
}

// TestStartRejectsInvalidRxBufferSize checks the Config validation path.
func TestStartRejectsInvalidRxBufferSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RxBufferSize = 0
	if _, err := Start(cfg); err != ErrInvalidRxBufferSize {
		t.Fatalf("Start err = %v, want ErrInvalidRxBufferSize", err)
	}
}
