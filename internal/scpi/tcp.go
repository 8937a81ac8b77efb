package scpi

import (
	"fmt"
	"net"
)

// DialTCP opens a raw-socket SCPI connection (the LAN port most bench
// instruments expose, typically 5555 or 5025).
func DialTCP(addr string, opts Options) (*Conn, error) {
	opts = opts.withDefaults()
	conn, err := net.DialTimeout("tcp", addr, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, coerceTimeout(err))
	}
	return NewConn(conn, conn.SetDeadline, opts), nil
}
