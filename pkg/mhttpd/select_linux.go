//go:build linux

package mhttpd

import "golang.org/x/sys/unix"

// fdZero, fdSet and fdIsSet are the Go stand-ins for the FD_ZERO/FD_SET/
// FD_ISSET macros a select()-based event loop is built on. unix.FdSet's
// bit layout (64-bit words) is Linux-specific, hence the build tag.

func fdZero(set *unix.FdSet) {
	for i := range set.Bits {
		set.Bits[i] = 0
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
