// Package profile holds the declarative capture recipes: one entry per
// instrument class describing how to coax a screenshot out of its display
// buffer. The table is loaded once at startup and read-only afterwards.
package profile

import (
	"fmt"
	"sort"
	"time"
)

// QueryMode selects how the screenshot payload is requested and decoded.
type QueryMode int

const (
	// RawRead sends the query command (if any) and reads the raw response
	// stream until the device stops transmitting.
	RawRead QueryMode = iota
	// BinaryBlock requests an IEEE 488.2 definite-length binary block;
	// the transport strips the block framing.
	BinaryBlock
	// AsciiBlock requests an ASCII-encoded block of decimal byte values.
	AsciiBlock
)

func (m QueryMode) String() string {
	switch m {
	case RawRead:
		return "read_raw"
	case BinaryBlock:
		return "binary_values"
	case AsciiBlock:
		return "ascii_values"
	}
	return fmt.Sprintf("QueryMode(%d)", int(m))
}

// Format is the image container the decoded payload is declared to be in.
// It is a hint for the persistence layer; several instruments lie about it.
type Format string

const (
	PNG Format = "PNG"
	BMP Format = "BMP"
	JPG Format = "JPG"
)

// Ext returns the lowercase file extension for the format, without the dot.
func (f Format) Ext() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case JPG:
		return "jpg"
	}
	return "bin"
}

// BinaryParams carries the block-query parameters. Present only for
// BinaryBlock and AsciiBlock profiles.
type BinaryParams struct {
	Datatype  string        // element datatype, always "B" (single byte)
	Container string        // decode container hint, e.g. "bytearray"
	Delay     time.Duration // settle time between setup and query, 0 if none
}

// Profile is one capture recipe.
type Profile struct {
	Name          string
	SetupCommands []string // sent in order before the query; never nil
	QueryMode     QueryMode
	QueryCommand  string // empty only when QueryMode is RawRead
	OutputFormat  Format
	BinaryParams  *BinaryParams // non-nil iff QueryMode is BinaryBlock or AsciiBlock
}

// Delay returns the configured settle delay, or zero when none applies.
func (p Profile) Delay() time.Duration {
	if p.BinaryParams == nil {
		return 0
	}
	return p.BinaryParams.Delay
}

// Store is the immutable mapping from instrument-class name to Profile.
// It is safe for concurrent readers once built.
type Store struct {
	profiles map[string]Profile
}

// Resolve looks up a profile by exact class name. A miss returns an error
// wrapping ErrNotFound.
func (s *Store) Resolve(name string) (Profile, error) {
	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}
	return p, nil
}

// Names returns all registered class names, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded profiles.
func (s *Store) Len() int {
	return len(s.profiles)
}
