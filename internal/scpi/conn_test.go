package scpi

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeStream feeds canned response bytes and records everything written.
type fakeStream struct {
	response bytes.Buffer
	written  bytes.Buffer
	closed   bool
	readErr  error
}

func (f *fakeStream) Read(p []byte) (int, error) {
	if f.response.Len() == 0 {
		if f.readErr != nil {
			return 0, f.readErr
		}
		return 0, ErrTimeout
	}
	return f.response.Read(p)
}

func (f *fakeStream) Write(p []byte) (int, error) {
	return f.written.Write(p)
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

func newTestConn(f *fakeStream) *Conn {
	return NewConn(f, nil, Options{})
}

func TestConnWriteTerminates(t *testing.T) {
	f := &fakeStream{}
	c := newTestConn(f)
	if err := c.Write(":STOP"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f.written.String() != ":STOP\n" {
		t.Fatalf("expected newline-terminated command, got %q", f.written.String())
	}
}

func TestConnQuery(t *testing.T) {
	f := &fakeStream{}
	f.response.WriteString("RIGOL TECHNOLOGIES,DS1054Z,DS1ZA000000000,00.04.04\r\n")
	c := newTestConn(f)

	reply, err := c.Query("*IDN?")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !strings.HasPrefix(reply, "RIGOL") || strings.HasSuffix(reply, "\n") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if f.written.String() != "*IDN?\n" {
		t.Fatalf("expected command on wire, got %q", f.written.String())
	}
}

func TestConnQueryBinaryBlock(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 200)
	f := &fakeStream{}
	fmt.Fprintf(&f.response, "#3%03d", len(payload))
	f.response.Write(payload)
	f.response.WriteString("\n")
	c := newTestConn(f)

	got, err := c.QueryBinaryBlock("DISPlay:SCReenshot? PNG")
	if err != nil {
		t.Fatalf("binary block: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %d bytes", len(got))
	}
}

func TestConnQueryASCIIBlock(t *testing.T) {
	f := &fakeStream{}
	f.response.WriteString("66,77,0,1\n")
	c := newTestConn(f)

	got, err := c.QueryASCIIBlock("HCOPy:SDUMp:DATA?")
	if err != nil {
		t.Fatalf("ascii block: %v", err)
	}
	if !bytes.Equal(got, []byte{66, 77, 0, 1}) {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestConnReadRawUntilStreamEnds(t *testing.T) {
	f := &fakeStream{}
	f.response.WriteString("BM-fake-bitmap-data")
	c := newTestConn(f)

	got, err := c.ReadRaw()
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if string(got) != "BM-fake-bitmap-data" {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestConnReadRawTimeoutWithNoData(t *testing.T) {
	f := &fakeStream{}
	c := newTestConn(f)

	_, err := c.ReadRaw()
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestConnQueryTimeout(t *testing.T) {
	f := &fakeStream{}
	c := newTestConn(f)

	_, err := c.Query("*IDN?")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestConnClose(t *testing.T) {
	f := &fakeStream{}
	c := newTestConn(f)
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !f.closed {
		t.Fatal("underlying stream not closed")
	}
}
