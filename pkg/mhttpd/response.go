package mhttpd

import (
	"bytes"
	"fmt"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/sys/unix"
)

// SendResponse builds and sends a status line, the server's fixed header
// block, optional caller-supplied extra headers, an optional Content-Type
// line, a blank line, and (if body is non-nil and contentLength > 0) the
// body via SendData.
//
// extraHeaders, if non-empty, must include its own trailing CRLFs — the
// caller owns line termination for that one field.
func (c *Connection) SendResponse(status uint16, contentType string, contentLength int, extraHeaders string, body []byte) error {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	fmt.Fprintf(bb, "HTTP/1.1 %d\r\n", status)
	bb.WriteString("Server: " + serverName + "\r\n")
	bb.WriteString("Cache-control: no-cache\r\n")
	bb.WriteString("Pragma: no-cache\r\n")
	bb.WriteString("Accept-Ranges: bytes\r\n")
	fmt.Fprintf(bb, "Content-Length: %d\r\n", contentLength)

	if extraHeaders != "" {
		bb.WriteString(extraHeaders)
	}
	if contentType != "" {
		bb.WriteString("Content-Type: " + contentType + "\r\n")
	}
	bb.WriteString("\r\n")

	if err := c.writeFull(bb.B); err != nil {
		c.server.evict(c, reasonSendShort)
		return err
	}

	if body != nil && contentLength > 0 {
		return c.SendData(contentLength, body)
	}
	return nil
}

// SendData writes length bytes of body to the connection, substituting
// any `<!--#echo var="NAME" -->` directives found along the way via the
// configured SSIHandler. If length is 0, len(body) is used instead.
//
// The variable name is bounded at SSITagMaxLength bytes; names longer
// than that, or a directive missing its `" -->` terminator, are treated
// as fatal and evict the connection rather than growing the cap
// unbounded.
func (c *Connection) SendData(length int, body []byte) error {
	if length == 0 {
		length = len(body)
	}
	if length > MaxSendLength {
		c.server.logf("send_data: length %d exceeds MaxSendLength", length)
		c.server.evict(c, reasonSendShort)
		return errSendTooLarge
	}

	remaining := body[:length]
	for {
		idx := bytes.Index(remaining, ssiPrefix)
		if idx < 0 {
			return c.writeOrEvict(remaining)
		}

		if err := c.writeOrEvict(remaining[:idx]); err != nil {
			return err
		}
		rest := remaining[idx+len(ssiPrefix):]

		nameEnd := bytes.IndexByte(rest, '"')
		if nameEnd < 0 || nameEnd > SSITagMaxLength {
			c.server.logf("SSI framing: unterminated or oversized directive from %s", c.sourceAddr)
			c.server.evict(c, reasonSSIFraming)
			return errSSIUnterminated
		}
		varName := rest[:nameEnd]
		after := rest[nameEnd:]

		if !bytes.HasPrefix(after, ssiTerminator) {
			c.server.logf("SSI framing: missing terminator from %s", c.sourceAddr)
			c.server.evict(c, reasonSSIFraming)
			return errSSIUnterminated
		}

		if c.server.cfg.SSIHandler != nil {
			c.server.cfg.SSIHandler(c, string(varName))
		}

		remaining = after[len(ssiTerminator):]
	}
}

func (c *Connection) writeOrEvict(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := c.writeFull(b); err != nil {
		c.server.evict(c, reasonSendShort)
		return err
	}
	return nil
}

// writeFull issues a single write(2) of b. Connection sockets are left in
// their default blocking mode (only the listening socket is non-blocking)
// so a single write ordinarily either completes fully or fails outright;
// a short write is treated as a fatal per-connection error, not a
// condition to retry.
func (c *Connection) writeFull(b []byte) error {
	for {
		n, err := unix.Write(c.fd, b)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		if n != len(b) {
			return errSendShort
		}
		return nil
	}
}
