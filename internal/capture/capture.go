// Package capture executes a resolved profile against a connected
// instrument and returns the screenshot payload. It performs no retries
// and no logging; every failure is surfaced to the caller as a typed
// error, and a human operator decides whether to try again.
package capture

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dmawson/scopeshot/internal/profile"
	"github.com/dmawson/scopeshot/internal/scpi"
)

// Device is the slice of the transport the dispatcher needs. scpi.Transport
// satisfies it; tests use recording fakes.
type Device interface {
	Write(cmd string) error
	QueryBinaryBlock(cmd string) ([]byte, error)
	QueryASCIIBlock(cmd string) ([]byte, error)
	ReadRaw() ([]byte, error)
}

// Result is a non-empty screenshot payload tagged with the container
// format the profile declares it to be in. The bytes are not reinterpreted
// here; format conversion is the persistence layer's job.
type Result struct {
	Data   []byte
	Format profile.Format
}

// Dispatcher runs capture recipes. The zero value is not usable; call New.
type Dispatcher struct {
	sleep func(time.Duration)
}

// New returns a Dispatcher using the real clock for settle delays.
func New() *Dispatcher {
	return &Dispatcher{sleep: time.Sleep}
}

// NewWithSleep returns a Dispatcher with an injected sleep function, for
// tests that assert delay ordering without waiting.
func NewWithSleep(sleep func(time.Duration)) *Dispatcher {
	return &Dispatcher{sleep: sleep}
}

// Capture runs one recipe to completion: setup commands in declared order,
// the optional settle delay, then the single payload query. Any step
// failing fails the whole capture; there is no partial state to resume.
func (d *Dispatcher) Capture(dev Device, p profile.Profile) (Result, error) {
	for _, cmd := range p.SetupCommands {
		if err := dev.Write(cmd); err != nil {
			return Result{}, wrap(p.Name, fmt.Sprintf("setup command %q", cmd), err)
		}
	}

	if delay := p.Delay(); delay > 0 {
		d.sleep(delay)
	}

	var (
		data []byte
		err  error
	)
	switch p.QueryMode {
	case profile.BinaryBlock:
		data, err = dev.QueryBinaryBlock(p.QueryCommand)
	case profile.AsciiBlock:
		data, err = dev.QueryASCIIBlock(p.QueryCommand)
	case profile.RawRead:
		if p.QueryCommand != "" {
			if werr := dev.Write(p.QueryCommand); werr != nil {
				return Result{}, wrap(p.Name, fmt.Sprintf("query command %q", p.QueryCommand), werr)
			}
		}
		data, err = dev.ReadRaw()
	default:
		return Result{}, wrap(p.Name, "query", fmt.Errorf("unknown query mode %s", p.QueryMode))
	}
	if err != nil {
		return Result{}, wrap(p.Name, "query", err)
	}

	if len(data) == 0 {
		return Result{}, &Error{Kind: EmptyPayload, Profile: p.Name, Step: "query"}
	}

	return Result{Data: data, Format: p.OutputFormat}, nil
}

func wrap(profileName, step string, err error) *Error {
	return &Error{
		Kind:    classify(err),
		Profile: profileName,
		Step:    step,
		Err:     err,
	}
}

func classify(err error) Kind {
	if errors.Is(err, scpi.ErrTimeout) {
		return Timeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout
	}
	return TransportFailure
}
