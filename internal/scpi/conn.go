package scpi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"
)

// Conn is a Transport over any byte stream. Commands are newline-terminated
// on the wire; responses are read through a buffered reader so block
// framing can be stripped byte by byte.
type Conn struct {
	rwc     io.ReadWriteCloser
	r       *bufio.Reader
	opts    Options
	deadline func(time.Time) error // nil when the stream handles timeouts itself
}

// NewConn wraps an open stream. deadline, when non-nil, is invoked before
// each exchange with the absolute response deadline (net.Conn.SetDeadline
// for sockets).
func NewConn(rwc io.ReadWriteCloser, deadline func(time.Time) error, opts Options) *Conn {
	opts = opts.withDefaults()
	return &Conn{
		rwc:      rwc,
		r:        bufio.NewReaderSize(rwc, opts.ChunkSize),
		opts:     opts,
		deadline: deadline,
	}
}

func (c *Conn) arm() error {
	if c.deadline == nil {
		return nil
	}
	return c.deadline(time.Now().Add(c.opts.Timeout))
}

// Write sends a single command, newline-terminated.
func (c *Conn) Write(cmd string) error {
	if err := c.arm(); err != nil {
		return fmt.Errorf("write %q: %w", cmd, err)
	}
	if _, err := io.WriteString(c.rwc, cmd+"\n"); err != nil {
		return fmt.Errorf("write %q: %w", cmd, coerceTimeout(err))
	}
	return nil
}

// Query sends a command and reads a single newline-terminated reply.
func (c *Conn) Query(cmd string) (string, error) {
	if err := c.Write(cmd); err != nil {
		return "", err
	}
	line, err := c.r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("query %q: %w", cmd, coerceTimeout(err))
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// QueryBinaryBlock sends a command and decodes an IEEE 488.2
// definite-length block reply, returning the payload with framing removed.
func (c *Conn) QueryBinaryBlock(cmd string) ([]byte, error) {
	if err := c.Write(cmd); err != nil {
		return nil, err
	}
	data, err := readDefiniteBlock(c.r)
	if err != nil {
		return nil, fmt.Errorf("binary block %q: %w", cmd, coerceTimeout(err))
	}
	return data, nil
}

// QueryASCIIBlock sends a command and decodes an ASCII block reply: one
// line of comma-separated decimal byte values.
func (c *Conn) QueryASCIIBlock(cmd string) ([]byte, error) {
	if err := c.Write(cmd); err != nil {
		return nil, err
	}
	line, err := c.r.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("ascii block %q: %w", cmd, coerceTimeout(err))
	}
	data, err := decodeASCIIBlock(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return nil, fmt.Errorf("ascii block %q: %w", cmd, err)
	}
	return data, nil
}

// ReadRaw accumulates the response stream until the device stops
// transmitting. The first chunk honors the full response timeout; once data
// has arrived, a quiet period or EOF ends the transfer.
func (c *Conn) ReadRaw() ([]byte, error) {
	if err := c.arm(); err != nil {
		return nil, err
	}

	var out []byte
	buf := make([]byte, c.opts.ChunkSize)
	for {
		n, err := c.r.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			err = coerceTimeout(err)
			if len(out) > 0 && (errors.Is(err, io.EOF) || errors.Is(err, ErrTimeout)) {
				return out, nil
			}
			return nil, fmt.Errorf("read raw: %w", err)
		}
		// Keep a short grace deadline between chunks so the end of
		// transmission is detected without waiting out the full timeout.
		if c.deadline != nil {
			grace := c.opts.Timeout / 10
			if grace < 100*time.Millisecond {
				grace = 100 * time.Millisecond
			}
			if derr := c.deadline(time.Now().Add(grace)); derr != nil {
				return out, nil
			}
		}
	}
}

// Close closes the underlying stream. Tearing down the connection is also
// the only way to abandon an exchange in progress.
func (c *Conn) Close() error {
	return c.rwc.Close()
}

// coerceTimeout rewraps deadline expiry so callers can match ErrTimeout.
func coerceTimeout(err error) error {
	if err == nil || errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, ErrTimeout)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%v: %w", err, ErrTimeout)
	}
	return err
}
