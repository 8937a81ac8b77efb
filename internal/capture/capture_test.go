package capture

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmawson/scopeshot/internal/profile"
	"github.com/dmawson/scopeshot/internal/scpi"
)

// fakeDevice records every interaction in order.
type fakeDevice struct {
	log []string

	writeErr  error
	queryData []byte
	queryErr  error
}

func (f *fakeDevice) Write(cmd string) error {
	f.log = append(f.log, "write "+cmd)
	return f.writeErr
}

func (f *fakeDevice) QueryBinaryBlock(cmd string) ([]byte, error) {
	f.log = append(f.log, "binary "+cmd)
	return f.queryData, f.queryErr
}

func (f *fakeDevice) QueryASCIIBlock(cmd string) ([]byte, error) {
	f.log = append(f.log, "ascii "+cmd)
	return f.queryData, f.queryErr
}

func (f *fakeDevice) ReadRaw() ([]byte, error) {
	f.log = append(f.log, "read_raw")
	return f.queryData, f.queryErr
}

// testDispatcher records sleeps into the device log so ordering between
// commands, delay and query is visible in one place.
func testDispatcher(f *fakeDevice) *Dispatcher {
	return NewWithSleep(func(d time.Duration) {
		f.log = append(f.log, "sleep "+d.String())
	})
}

func binaryProfile(name string, commands []string, delay time.Duration) profile.Profile {
	return profile.Profile{
		Name:          name,
		SetupCommands: commands,
		QueryMode:     profile.BinaryBlock,
		QueryCommand:  "DISPlay:DATA?",
		OutputFormat:  profile.PNG,
		BinaryParams:  &profile.BinaryParams{Datatype: "B", Container: "bytearray", Delay: delay},
	}
}

func TestCaptureBatronixScenario(t *testing.T) {
	// Empty setup, binary block, 1024 arbitrary bytes back, tagged PNG.
	payload := bytes.Repeat([]byte{0x5A}, 1024)
	f := &fakeDevice{queryData: payload}
	p := profile.Profile{
		Name:          "Scope Batronix",
		SetupCommands: []string{},
		QueryMode:     profile.BinaryBlock,
		QueryCommand:  "DISPlay:SCReenshot? PNG",
		OutputFormat:  profile.PNG,
		BinaryParams:  &profile.BinaryParams{Datatype: "B", Container: "bytearray"},
	}

	res, err := testDispatcher(f).Capture(f, p)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !bytes.Equal(res.Data, payload) {
		t.Fatalf("expected the 1024 payload bytes back, got %d bytes", len(res.Data))
	}
	if res.Format != profile.PNG {
		t.Errorf("expected PNG tag, got %s", res.Format)
	}
	if len(f.log) != 1 || f.log[0] != "binary DISPlay:SCReenshot? PNG" {
		t.Fatalf("expected a lone query with zero setup commands, got %v", f.log)
	}
}

func TestCaptureSetupOrderAndDelay(t *testing.T) {
	// Three setup commands, then a >=100ms pause, then the query.
	f := &fakeDevice{queryData: []byte{1}}
	p := binaryProfile("Signal Analyzer R&S", []string{
		"HCOPy:DEVice:LANGuage PNG",
		"HCOPy:DESTination 'MMEM'",
		"HCOPy:IMMediate",
	}, 100*time.Millisecond)

	if _, err := testDispatcher(f).Capture(f, p); err != nil {
		t.Fatalf("capture: %v", err)
	}

	want := []string{
		"write HCOPy:DEVice:LANGuage PNG",
		"write HCOPy:DESTination 'MMEM'",
		"write HCOPy:IMMediate",
		"sleep 100ms",
		"binary DISPlay:DATA?",
	}
	if len(f.log) != len(want) {
		t.Fatalf("expected %d steps, got %v", len(want), f.log)
	}
	for i := range want {
		if f.log[i] != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], f.log[i])
		}
	}
}

func TestCaptureNoSleepWithoutDelay(t *testing.T) {
	f := &fakeDevice{queryData: []byte{1}}
	slept := false
	d := NewWithSleep(func(time.Duration) { slept = true })

	if _, err := d.Capture(f, binaryProfile("X", nil, 0)); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if slept {
		t.Fatal("dispatcher slept with a zero delay")
	}
}

func TestCaptureRawReadWritesQueryFirst(t *testing.T) {
	f := &fakeDevice{queryData: []byte("BMdata")}
	p := profile.Profile{
		Name:          "Scope Siglent",
		SetupCommands: []string{"SCDP"},
		QueryMode:     profile.RawRead,
		OutputFormat:  profile.BMP,
	}

	res, err := testDispatcher(f).Capture(f, p)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if res.Format != profile.BMP {
		t.Errorf("expected BMP tag, got %s", res.Format)
	}
	want := []string{"write SCDP", "read_raw"}
	if len(f.log) != 2 || f.log[0] != want[0] || f.log[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, f.log)
	}
}

func TestCaptureAsciiBlock(t *testing.T) {
	f := &fakeDevice{queryData: []byte{66, 77}}
	p := profile.Profile{
		Name:          "Counter",
		SetupCommands: []string{},
		QueryMode:     profile.AsciiBlock,
		QueryCommand:  "HCOPy:SDUMp:DATA?",
		OutputFormat:  profile.BMP,
		BinaryParams:  &profile.BinaryParams{Datatype: "B", Container: "bytearray"},
	}
	if _, err := testDispatcher(f).Capture(f, p); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if f.log[len(f.log)-1] != "ascii HCOPy:SDUMp:DATA?" {
		t.Fatalf("expected ascii query, got %v", f.log)
	}
}

func TestCaptureEmptyPayload(t *testing.T) {
	f := &fakeDevice{queryData: []byte{}}
	_, err := testDispatcher(f).Capture(f, binaryProfile("Scope", nil, 0))

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if cerr.Kind != EmptyPayload {
		t.Fatalf("expected EmptyPayload, got %s", cerr.Kind)
	}
	if cerr.Profile != "Scope" {
		t.Errorf("error should carry the profile name, got %q", cerr.Profile)
	}
}

func TestCaptureTimeoutNotRetried(t *testing.T) {
	f := &fakeDevice{queryErr: fmt.Errorf("query: %w", scpi.ErrTimeout)}
	_, err := testDispatcher(f).Capture(f, binaryProfile("Scope", nil, 0))

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if cerr.Kind != Timeout {
		t.Fatalf("expected Timeout, got %s", cerr.Kind)
	}
	// Exactly one query attempt: no internal retry.
	if len(f.log) != 1 {
		t.Fatalf("expected a single attempt, got %v", f.log)
	}
}

func TestCaptureSetupFailureStopsSequence(t *testing.T) {
	f := &fakeDevice{writeErr: errors.New("io failure"), queryData: []byte{1}}
	p := binaryProfile("Scope", []string{":STOP", ":SINGLE"}, 0)

	_, err := testDispatcher(f).Capture(f, p)
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if cerr.Kind != TransportFailure {
		t.Fatalf("expected TransportFailure, got %s", cerr.Kind)
	}
	if cerr.Step != `setup command ":STOP"` {
		t.Errorf("error should name the failing step, got %q", cerr.Step)
	}
	// The first write failed; nothing further may run.
	if len(f.log) != 1 {
		t.Fatalf("expected capture to stop at the first failure, got %v", f.log)
	}
}

func TestCaptureSetupTimeout(t *testing.T) {
	f := &fakeDevice{writeErr: scpi.ErrTimeout}
	_, err := testDispatcher(f).Capture(f, binaryProfile("Scope", []string{":STOP"}, 0))

	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != Timeout {
		t.Fatalf("expected Timeout error, got %v", err)
	}
}
