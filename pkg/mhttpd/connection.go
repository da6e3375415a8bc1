package mhttpd

import (
	"github.com/zorxx/mhttpd/pkg/mhttpd/rxbuf"
)

// connState names one state of the request parser/dispatcher; step()
// switches on it. It stands in for a function-pointer-per-state design:
// a plain enum plus a switch is the idiomatic Go equivalent.
type connState int

const (
	stateParseHeader connState = iota
	stateHeaderComplete
	stateHandleGet
	stateHandleUnsupported
	stateHandlePostBegin
	stateParsePostHeader
	statePostHeaderComplete
	statePostData
)

// requestLine holds the three substring views produced by
// headerComplete. Each field is a slice into the owned header-entry bytes
// returned by headers.Get(0); a Go slice already is an owned-buffer-plus-
// offset/length pair, so no separate view type is needed.
type requestLine struct {
	method  []byte
	target  []byte // trimmed of any "?query" suffix
	version []byte
}

// postState tracks the progress of parsing and streaming a single
// multipart/form-data upload.
type postState struct {
	contentLength     int
	contentRemaining  int
	boundary          []byte
	filename          string
	postHeaderLength  int
	postTrailerLength int
}

// Connection is the per-client state the reactor drives: the socket, the
// receive buffer, the parser state and whatever a request so far has
// parsed out of it. It is created on accept and destroyed on eviction;
// reset between sequential requests on the same socket by resetState.
type Connection struct {
	server *Server

	fd         int
	sourceAddr string

	rx     []byte
	rxSize int

	state connState

	headers     rxbuf.StringList
	postHeaders rxbuf.StringList

	reqLine requestLine
	params  [][]byte

	post postState
}

func newConnection(srv *Server, fd int, sourceAddr string, rx []byte) *Connection {
	return &Connection{
		server:     srv,
		fd:         fd,
		sourceAddr: sourceAddr,
		rx:         rx,
		state:      stateParseHeader,
	}
}

// SourceAddr returns the connection's printable "a.b.c.d:port" endpoint.
func (c *Connection) SourceAddr() string {
	return c.sourceAddr
}

// resetState clears the header-entry and post-header-entry lists, zeroes
// POST sub-state and returns the state machine to parsing headers, so the
// underlying socket can carry the next sequential request. reqLine and
// params hold views into the header-entry list, so they must be dropped
// in the same step as the list they reference — Clear below does exactly
// that, and reqLine/params are overwritten before they are read again.
func (c *Connection) resetState() {
	c.headers.Clear()
	c.postHeaders.Clear()
	c.reqLine = requestLine{}
	c.params = nil
	c.post = postState{}
	c.state = stateParseHeader
}
