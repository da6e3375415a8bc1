// Package rxbuf implements the byte-buffer primitives the request state
// machine is built on: locating delimiters in a fixed receive buffer,
// shifting consumed bytes out in place, and chopping owned strings off a
// mutable cursor without copying the remainder.
package rxbuf

import "bytes"

// Locate returns the offset of the first occurrence of delim in buf,
// or -1 if delim does not appear. This is a single-pass scan (no KMP):
// receive buffers in this server are small enough that the naive
// algorithm's worst case never matters in practice.
func Locate(buf, delim []byte) int {
	if len(delim) == 0 || len(buf) < len(delim) {
		return -1
	}
	matched := 0
	for i := 0; i < len(buf); i++ {
		if buf[i] == delim[matched] {
			matched++
			if matched == len(delim) {
				return i - matched + 1
			}
		} else {
			// Reset, but re-check the current byte against the start of
			// delim in case of overlapping prefixes (e.g. "\r\r\n").
			matched = 0
			if buf[i] == delim[0] {
				matched = 1
				if matched == len(delim) {
					return i
				}
			}
		}
	}
	return -1
}

// Shift moves buf[k:length] down to buf[0:length-k], discarding the
// consumed prefix in place. It tolerates k == length (no-op). Callers
// must ensure k <= length; Shift does not defend against k > length.
func Shift(buf []byte, k, length int) {
	if k == 0 || k == length {
		return
	}
	copy(buf[0:length-k], buf[k:length])
}

// Chop advances *cursor past the next occurrence of delim, returning the
// bytes before the match with the delimiter stripped. On success *cursor
// is left pointing just past the delimiter. On failure (delim not found)
// *cursor is left unchanged and ok is false — the Go equivalent of the
// original's "restore cursor, return not-found", since slices need no
// null-terminator bookkeeping to stay zero-copy.
func Chop(cursor *[]byte, delim []byte) (token []byte, ok bool) {
	idx := Locate(*cursor, delim)
	if idx < 0 {
		return nil, false
	}
	token = (*cursor)[:idx]
	*cursor = (*cursor)[idx+len(delim):]
	return token, true
}

// StringList is a growable, owned list of byte-range copies: each entry
// is copied out of the caller's buffer once and owned thereafter, so it
// remains valid after the source buffer is shifted or reused.
type StringList struct {
	entries [][]byte
}

// Add appends an owned copy of b to the list and returns its index.
func (l *StringList) Add(b []byte) int {
	owned := make([]byte, len(b))
	copy(owned, b)
	l.entries = append(l.entries, owned)
	return len(l.entries) - 1
}

// Get returns the entry at index i. The returned slice is owned by the
// list and remains valid until Clear is called.
func (l *StringList) Get(i int) []byte {
	return l.entries[i]
}

// Lowercase lowercases the entry at index i in place, field and value
// alike — the server only ever compares lowercased literals against it.
func (l *StringList) Lowercase(i int) {
	e := l.entries[i]
	for j, c := range e {
		if c >= 'A' && c <= 'Z' {
			e[j] = c + ('a' - 'A')
		}
	}
}

// Len returns the number of entries.
func (l *StringList) Len() int {
	return len(l.entries)
}

// Clear releases every entry and resets the list to empty, dropping all
// views derived from it in one step (the owner of those views must do the
// same — see Connection.resetState).
func (l *StringList) Clear() {
	l.entries = l.entries[:0]
}

// Find returns the first entry at index >= from that has prefix as a byte
// prefix, along with the bytes following the prefix.
func (l *StringList) Find(from int, prefix []byte) (rest []byte, ok bool) {
	for i := from; i < len(l.entries); i++ {
		if bytes.HasPrefix(l.entries[i], prefix) {
			return l.entries[i][len(prefix):], true
		}
	}
	return nil, false
}

// FindContains returns the first entry at index >= from containing needle,
// along with everything in that entry following the match.
func (l *StringList) FindContains(from int, needle []byte) (rest []byte, ok bool) {
	for i := from; i < len(l.entries); i++ {
		if idx := bytes.Index(l.entries[i], needle); idx >= 0 {
			return l.entries[i][idx+len(needle):], true
		}
	}
	return nil, false
}
