package capture

import "fmt"

// Kind classifies a capture failure.
type Kind int

const (
	// Timeout: a command or query exceeded the transport response timeout.
	Timeout Kind = iota
	// EmptyPayload: the decoded payload had zero length.
	EmptyPayload
	// TransportFailure: the underlying connection reported a fault.
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case EmptyPayload:
		return "empty payload"
	case TransportFailure:
		return "transport failure"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a capture failure with enough context for a user-facing
// message: which profile, which step, and why.
type Error struct {
	Kind    Kind
	Profile string
	Step    string // e.g. `setup command ":STOP"` or "query"
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("capture %q: %s at %s", e.Profile, e.Kind, e.Step)
	}
	return fmt.Sprintf("capture %q: %s at %s: %v", e.Profile, e.Kind, e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
