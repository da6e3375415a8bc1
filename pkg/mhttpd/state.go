package mhttpd

import (
	"bytes"
	"strconv"

	"github.com/zorxx/mhttpd/pkg/mhttpd/rxbuf"
)

// stepResult is returned by each state function: consumed bytes to
// discard from the head of the receive buffer, whether a fatal parse
// error occurred, and whether the reactor should immediately invoke the
// (possibly new) state again without waiting for more bytes.
type stepResult struct {
	consumed int
	err      bool
	cont     bool
}

var (
	crlf      = []byte("\r\n")
	space     = []byte(" ")
	ampersand = []byte("&")

	contentLengthPrefix = []byte("content-length: ")
	boundaryNeedle       = []byte("boundary=")
	filenameNeedle       = []byte(`filename="`)
)

// step dispatches to the current state's handler. The reactor (handleReceive)
// calls this repeatedly until cont is false or err is true.
func (c *Connection) step() stepResult {
	switch c.state {
	case stateParseHeader:
		return c.parseHeaderInto(&c.headers, nil)
	case stateHeaderComplete:
		return c.headerComplete()
	case stateHandleGet:
		return c.handleGet()
	case stateHandleUnsupported:
		return c.handleUnsupported()
	case stateHandlePostBegin:
		return c.handlePostBegin()
	case stateParsePostHeader:
		return c.parseHeaderInto(&c.postHeaders, &c.post.contentRemaining)
	case statePostHeaderComplete:
		return c.postHeaderComplete()
	case statePostData:
		return c.postData()
	default:
		return stepResult{err: true}
	}
}

// parseHeaderInto locates a CRLF-terminated line, appends it (without the
// CRLF) to list, and consumes length+2 bytes. An empty line transitions
// onward — to HeaderComplete when decRemaining is nil, or to
// PostHeaderComplete when it isn't (that non-nilness is what distinguishes
// parsing the request's own headers from parsing one multipart part's
// headers) — and consumes the blank-line CRLF. When decRemaining is
// non-nil it is decremented by every byte consumed, including the
// terminating blank line, tracking how much of Content-Length remains as
// the multipart preamble is read.
//
// Request headers are lowercased field-and-value in place from the second
// entry on (entry 0 is the request line itself, which is matched against
// literal "GET"/"POST" and must keep its case) so later lookups like
// "content-length: " can use a single-case literal. Entries parsed into a
// part's own header list are left untouched: the first line a part's
// header block contains is the multipart boundary delimiter, not a
// semantically meaningful header, and lowercasing the lines after it would
// destroy the case of "filename=" values such as "Photo.JPG" that callers
// need back verbatim.
func (c *Connection) parseHeaderInto(list *rxbuf.StringList, decRemaining *int) stepResult {
	buf := c.rx[:c.rxSize]
	idx := rxbuf.Locate(buf, crlf)
	if idx < 0 {
		return stepResult{cont: false}
	}

	if idx == 0 {
		if decRemaining != nil {
			*decRemaining -= 2
			c.state = statePostHeaderComplete
		} else {
			c.state = stateHeaderComplete
		}
		return stepResult{consumed: 2, cont: true}
	}

	entryIdx := list.Add(buf[:idx])
	if decRemaining == nil && entryIdx >= 1 {
		list.Lowercase(entryIdx)
	}

	if decRemaining != nil {
		*decRemaining -= idx + 2
	}

	return stepResult{consumed: idx + 2, cont: true}
}

// headerComplete splits the request line into method/target/version,
// trims and splits any "?query" suffix off target into query-parameter
// views (capped at MaxURIParams), and dispatches by method.
//
// The URI is trimmed at '?' before GET handlers ever see it, so prefix
// matching and the target passed to a handler never include the query
// string.
func (c *Connection) headerComplete() stepResult {
	if c.headers.Len() == 0 {
		c.server.logf("parse fatal: no header entries")
		return stepResult{err: true}
	}

	cursor := c.headers.Get(0)
	method, _ := rxbuf.Chop(&cursor, space)
	target, _ := rxbuf.Chop(&cursor, space)
	version := cursor

	c.reqLine = requestLine{method: method, target: target, version: version}

	if q := bytes.IndexByte(target, '?'); q >= 0 {
		c.reqLine.target = target[:q]
		qcursor := target[q+1:]
		for len(c.params) < MaxURIParams {
			param, ok := rxbuf.Chop(&qcursor, ampersand)
			if !ok {
				if len(qcursor) > 0 {
					c.params = append(c.params, qcursor)
				}
				break
			}
			c.params = append(c.params, param)
		}
	}

	switch {
	case bytes.Equal(method, []byte("GET")):
		c.state = stateHandleGet
	case bytes.Equal(method, []byte("POST")):
		c.state = stateHandlePostBegin
	default:
		c.state = stateHandleUnsupported
	}

	return stepResult{cont: true}
}

// handleGet invokes every registered handler whose URI is a byte-prefix
// of the target, in registration order — including multiple handlers at
// once when one registered URI is itself a prefix of another; this is
// deliberate, not a bug, since registrations are expected to use disjoint
// prefixes in practice. If none matched, the default handler (if any)
// runs instead.
func (c *Connection) handleGet() stepResult {
	matched := 0
	for _, entry := range c.server.cfg.GetHandlers {
		if bytes.HasPrefix(c.reqLine.target, []byte(entry.URI)) {
			entry.Handler(c, c.reqLine.target, c.params, c.sourceAddr, entry.Cookie)
			matched++
		}
	}
	if matched == 0 && c.server.cfg.DefaultGetHandler != nil {
		c.server.cfg.DefaultGetHandler(c, c.reqLine.target, c.params, c.sourceAddr, c.server.cfg.DefaultGetCookie)
	}
	c.resetState()
	return stepResult{cont: true}
}

// handleUnsupported logs the method and resets the connection without
// sending any response.
func (c *Connection) handleUnsupported() stepResult {
	c.server.logf("unsupported method %q from %s", c.reqLine.method, c.sourceAddr)
	c.resetState()
	return stepResult{cont: true}
}

// handlePostBegin reads Content-Length out of the already-parsed request
// headers.
func (c *Connection) handlePostBegin() stepResult {
	if val, ok := c.headers.Find(1, contentLengthPrefix); ok {
		if n, err := strconv.Atoi(string(bytes.TrimSpace(val))); err == nil {
			c.post.contentLength = n
			c.post.contentRemaining = n
		} else {
			c.server.logf("POST framing: invalid content-length %q", val)
		}
	} else {
		c.server.logf("POST framing: no content-length header")
	}
	c.state = stateParsePostHeader
	return stepResult{cont: true}
}

// postHeaderComplete captures the multipart boundary from the request's
// Content-Type header and the filename from the part's
// Content-Disposition header, derives the preamble and trailer lengths,
// invokes the POST handler's start callback, and moves to PostData.
//
// post_trailer_length is simply len(boundary), which assumes a boundary
// string without the leading "--" delimiter prefix or trailing "--\r\n"
// terminator actually present on the wire. For a boundary "BND" the real
// trailing delimiter is "\r\n--BND--" (9 bytes), not 3 — this
// under-subtracts the trailer. This is a known, accepted limitation of
// the framing arithmetic, not something this change attempts to fix.
func (c *Connection) postHeaderComplete() stepResult {
	boundary, _ := c.headers.FindContains(1, boundaryNeedle)
	c.post.boundary = boundary

	if filename, ok := c.postHeaders.FindContains(0, filenameNeedle); ok {
		if end := bytes.IndexByte(filename, '"'); end >= 0 {
			c.post.filename = string(filename[:end])
		}
	}

	c.post.postHeaderLength = c.post.contentLength - c.post.contentRemaining
	c.post.postTrailerLength = len(c.post.boundary)

	effective := c.post.contentLength - c.post.postHeaderLength - c.post.postTrailerLength
	if effective < 0 {
		c.server.logf("POST framing: length underflow (content_length=%d header=%d trailer=%d)",
			c.post.contentLength, c.post.postHeaderLength, c.post.postTrailerLength)
	} else {
		c.post.contentLength = effective
	}

	if c.server.cfg.PostHandler != nil {
		c.server.cfg.PostHandler(c, true, false, c.post.filename, nil, c.post.contentLength, c.sourceAddr, c.server.cfg.PostCookie)
	}

	c.state = statePostData
	return stepResult{cont: true}
}

// postData hands the application every available body byte as it
// arrives, holding back the trailing boundary bytes from the
// application-visible portion, and emits the single finish callback once
// content_remaining reaches zero.
func (c *Connection) postData() stepResult {
	handled := c.post.contentRemaining
	if c.rxSize < handled {
		handled = c.rxSize
	}
	c.post.contentRemaining -= handled

	portion := handled
	if c.post.contentRemaining < c.post.postTrailerLength {
		portion -= c.post.postTrailerLength - c.post.contentRemaining
	}
	if portion < 0 {
		portion = 0
	}

	if portion > 0 && c.server.cfg.PostHandler != nil {
		c.server.cfg.PostHandler(c, false, false, c.post.filename, c.rx[:portion], c.post.contentLength, c.sourceAddr, c.server.cfg.PostCookie)
	}

	if c.post.contentRemaining == 0 {
		if c.server.cfg.PostHandler != nil {
			c.server.cfg.PostHandler(c, false, true, c.post.filename, nil, c.post.contentLength, c.sourceAddr, c.server.cfg.PostCookie)
		}
		c.resetState()
		return stepResult{consumed: handled, cont: true}
	}

	return stepResult{consumed: handled, cont: false}
}
