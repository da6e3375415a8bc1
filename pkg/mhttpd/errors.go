package mhttpd

import "errors"

// Start / configuration errors.
var (
	// ErrInvalidRxBufferSize is returned by Start when Config.RxBufferSize
	// is not greater than zero.
	ErrInvalidRxBufferSize = errors.New("mhttpd: rx_buffer_size must be > 0")

	// ErrNotRunning is returned by Process after Shutdown.
	ErrNotRunning = errors.New("mhttpd: server is not running")
)

// Per-connection eviction reasons. These never escape the reactor:
// Process itself reports only ErrNotRunning and a failed readiness wait;
// every per-connection failure is logged and the offending connection is
// evicted.
//
// There is no separate "allocation failure" reason: a slice append that
// cannot grow panics the runtime in idiomatic Go rather than returning a
// recoverable error, so there is nothing for evict to report that differs
// from any other Go out-of-memory condition.
const (
	reasonBufferOverrun = "buffer_overrun"
	reasonUnderrun      = "underrun"
	reasonReadFailure   = "read_failure"
	reasonParseFatal    = "parse_fatal"
	reasonSSIFraming    = "ssi_framing"
	reasonSendShort     = "send_short"
	reasonShutdown      = "shutdown"
)

// errSendShort is the sentinel the response writer uses to signal a short
// write. The connection is evicted (and the eviction logged) before
// SendResponse or SendData returns it to the calling handler.
var errSendShort = errors.New("mhttpd: send returned fewer bytes than requested")

// errSSIUnterminated signals an unterminated `<!--#echo var="...` directive.
var errSSIUnterminated = errors.New("mhttpd: unterminated SSI directive")

// errSendTooLarge signals a single send_data call exceeding MaxSendLength.
var errSendTooLarge = errors.New("mhttpd: send_data length exceeds MaxSendLength")
