package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleTable = `
Scope Batronix:
  commands: []
  query_type: binary_values
  query_command: "DISPlay:SCReenshot? PNG"
  file_type: PNG
  binary_params:
    datatype: B
    container: bytearray

Signal Analyzer R&S:
  commands:
    - "HCOPy:DEVice:LANGuage PNG"
    - "HCOPy:DESTination 'MMEM'"
    - "HCOPy:IMMediate"
  query_type: binary_values
  query_command: "MMEMory:DATA? 'SCREEN.PNG'"
  file_type: PNG
  binary_params:
    datatype: B
    container: bytearray
    delay: 0.1

Scope Siglent:
  commands:
    - "SCDP"
  query_type: read_raw
  file_type: BMP

Counter Keysight:
  commands: []
  query_type: ascii_values
  query_command: "HCOPy:SDUMp:DATA?"
  file_type: PNG
  binary_params:
    datatype: B
    container: bytearray
    delay: 0.5
`

func TestParseValidTable(t *testing.T) {
	store, err := Parse([]byte(sampleTable))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if store.Len() != 4 {
		t.Fatalf("expected 4 profiles, got %d", store.Len())
	}

	p, err := store.Resolve("Scope Batronix")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(p.SetupCommands) != 0 {
		t.Errorf("expected no setup commands, got %v", p.SetupCommands)
	}
	if p.SetupCommands == nil {
		t.Error("setup commands must be empty, not nil")
	}
	if p.QueryMode != BinaryBlock {
		t.Errorf("expected binary_values mode, got %s", p.QueryMode)
	}
	if p.QueryCommand != "DISPlay:SCReenshot? PNG" {
		t.Errorf("unexpected query command %q", p.QueryCommand)
	}
	if p.OutputFormat != PNG {
		t.Errorf("expected PNG, got %s", p.OutputFormat)
	}
	if p.BinaryParams == nil || p.BinaryParams.Delay != 0 {
		t.Errorf("expected zero delay, got %+v", p.BinaryParams)
	}
}

func TestParsePreservesCommandOrder(t *testing.T) {
	store, err := Parse([]byte(sampleTable))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	p, err := store.Resolve("Signal Analyzer R&S")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{
		"HCOPy:DEVice:LANGuage PNG",
		"HCOPy:DESTination 'MMEM'",
		"HCOPy:IMMediate",
	}
	if len(p.SetupCommands) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(p.SetupCommands))
	}
	for i, cmd := range want {
		if p.SetupCommands[i] != cmd {
			t.Errorf("command %d: expected %q, got %q", i, cmd, p.SetupCommands[i])
		}
	}
	if p.BinaryParams.Delay != 100*time.Millisecond {
		t.Errorf("expected 100ms delay, got %v", p.BinaryParams.Delay)
	}
}

func TestParseBinaryParamsInvariant(t *testing.T) {
	store, err := Parse([]byte(sampleTable))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	for _, name := range store.Names() {
		p, err := store.Resolve(name)
		if err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
		hasParams := p.BinaryParams != nil
		wantParams := p.QueryMode == BinaryBlock || p.QueryMode == AsciiBlock
		if hasParams != wantParams {
			t.Errorf("%q: mode %s with binary_params=%v", name, p.QueryMode, hasParams)
		}
	}
}

func TestParseSchemaErrors(t *testing.T) {
	cases := []struct {
		desc string
		doc  string
		want string // offending entry name
	}{
		{
			desc: "missing query_type",
			doc:  "Scope X:\n  query_command: \"Q?\"\n  file_type: PNG\n",
			want: "Scope X",
		},
		{
			desc: "missing query_command",
			doc:  "Scope Y:\n  query_type: binary_values\n  file_type: PNG\n  binary_params:\n    datatype: B\n",
			want: "Scope Y",
		},
		{
			desc: "binary_values without binary_params",
			doc:  "Scope Z:\n  query_type: binary_values\n  query_command: \"Q?\"\n  file_type: PNG\n",
			want: "Scope Z",
		},
		{
			desc: "unknown query_type",
			doc:  "Scope W:\n  query_type: bulk\n  query_command: \"Q?\"\n  file_type: PNG\n",
			want: "Scope W",
		},
		{
			desc: "unknown file_type",
			doc:  "Scope V:\n  query_type: read_raw\n  file_type: GIF\n",
			want: "Scope V",
		},
		{
			desc: "negative delay",
			doc:  "Scope U:\n  query_type: binary_values\n  query_command: \"Q?\"\n  file_type: PNG\n  binary_params:\n    delay: -1\n",
			want: "Scope U",
		},
		{
			desc: "read_raw with binary_params",
			doc:  "Scope T:\n  query_type: read_raw\n  file_type: BMP\n  binary_params:\n    datatype: B\n",
			want: "Scope T",
		},
	}

	for _, tc := range cases {
		_, err := Parse([]byte(tc.doc))
		if err == nil {
			t.Errorf("%s: expected error, got nil", tc.desc)
			continue
		}
		var se *SchemaError
		if !errors.As(err, &se) {
			t.Errorf("%s: expected SchemaError, got %T: %v", tc.desc, err, err)
			continue
		}
		if se.Name != tc.want {
			t.Errorf("%s: expected entry %q named, got %q", tc.desc, tc.want, se.Name)
		}
	}
}

func TestParseMalformedDocument(t *testing.T) {
	_, err := Parse([]byte("::\n  - not yaml at all: ["))
	if err == nil {
		t.Fatal("expected error for malformed document")
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %T: %v", err, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %T: %v", err, err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(sampleTable), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if store.Len() != 4 {
		t.Fatalf("expected 4 profiles, got %d", store.Len())
	}
}

func TestResolveUnknownName(t *testing.T) {
	store, err := Parse([]byte(sampleTable))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = store.Resolve("Scope Nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNamesSorted(t *testing.T) {
	store, err := Parse([]byte(sampleTable))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	names := store.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
