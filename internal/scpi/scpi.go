// Package scpi implements the command/response transport for SCPI
// instruments over raw TCP sockets and serial ports, including the bulk
// block encodings used for screenshot payloads.
package scpi

import (
	"errors"
	"time"
)

// ErrTimeout is returned when an exchange exceeds the configured response
// timeout. Callers detect it with errors.Is.
var ErrTimeout = errors.New("scpi: timeout")

const (
	// DefaultTimeout bounds each command/response exchange.
	DefaultTimeout = 30 * time.Second
	// DefaultChunkSize is the read buffer size for bulk transfers.
	DefaultChunkSize = 8000
)

// Options configures a connection.
type Options struct {
	Timeout   time.Duration // zero means DefaultTimeout
	ChunkSize int           // zero means DefaultChunkSize
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// Transport is the device handle the rest of the application talks to.
// A Transport is not safe for concurrent use; each handle is driven by one
// caller at a time.
type Transport interface {
	Write(cmd string) error
	Query(cmd string) (string, error)
	QueryBinaryBlock(cmd string) ([]byte, error)
	QueryASCIIBlock(cmd string) ([]byte, error)
	ReadRaw() ([]byte, error)
	Close() error
}
