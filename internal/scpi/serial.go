package scpi

import (
	"fmt"

	"go.bug.st/serial"
)

// serialStream adapts a serial port to the Conn stream contract. The port
// read timeout is fixed at open; a read that returns no data within it is
// reported as ErrTimeout so it matches socket deadline expiry.
type serialStream struct {
	port serial.Port
}

func (s serialStream) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if err == nil && n == 0 {
		return 0, ErrTimeout
	}
	return n, err
}

func (s serialStream) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s serialStream) Close() error {
	return s.port.Close()
}

// OpenSerial opens a serial (ASRL) SCPI connection.
func OpenSerial(portName string, baudRate int, opts Options) (*Conn, error) {
	opts = opts.withDefaults()

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(opts.Timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}

	return NewConn(serialStream{port: port}, nil, opts), nil
}
