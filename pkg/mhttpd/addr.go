package mhttpd

import "strconv"

// ipv4String formats a raw IPv4 address (as stored in unix.SockaddrInet4)
// as "a.b.c.d", joined with ":port" by formatSourceAddress to produce the
// printable source endpoint handlers receive, bounded well under
// MaxSourceAddressLength.
func ipv4String(addr [4]byte) string {
	return strconv.Itoa(int(addr[0])) + "." +
		strconv.Itoa(int(addr[1])) + "." +
		strconv.Itoa(int(addr[2])) + "." +
		strconv.Itoa(int(addr[3]))
}

func portString(port int) string {
	return strconv.Itoa(port)
}
