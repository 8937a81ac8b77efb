package profile

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNotFound marks a resolution miss: the class name is not in the store.
var ErrNotFound = errors.New("not found")

// LoadError means the profile document itself could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load profiles: %v", e.Err)
	}
	return fmt.Sprintf("load profiles %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError means one entry violates the profile schema. It names the
// offending entry. Any schema violation aborts the whole load: a broken
// table is a packaging mistake, caught at startup rather than at first use.
type SchemaError struct {
	Name   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("profile %q: %s", e.Name, e.Reason)
}

// rawEntry mirrors one YAML record before validation.
//
//	<InstrumentClassName>:
//	  commands: [ ... ]
//	  query_type: binary_values | ascii_values | read_raw
//	  query_command: "..."
//	  file_type: PNG | BMP | JPG
//	  binary_params:
//	    datatype: B
//	    container: bytearray
//	    delay: 0.1          # seconds
type rawEntry struct {
	Commands     []string   `yaml:"commands"`
	QueryType    string     `yaml:"query_type"`
	QueryCommand string     `yaml:"query_command"`
	FileType     string     `yaml:"file_type"`
	BinaryParams *rawParams `yaml:"binary_params"`
}

type rawParams struct {
	Datatype  string  `yaml:"datatype"`
	Container string  `yaml:"container"`
	Delay     float64 `yaml:"delay"`
}

// Load reads and validates the profile table from a YAML file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	s, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return s, nil
}

// Parse builds a Store from YAML data, validating every entry eagerly.
func Parse(data []byte) (*Store, error) {
	var raw map[string]rawEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Err: err}
	}

	profiles := make(map[string]Profile, len(raw))
	for name, entry := range raw {
		p, err := buildProfile(name, entry)
		if err != nil {
			return nil, err
		}
		profiles[name] = p
	}
	return &Store{profiles: profiles}, nil
}

func buildProfile(name string, entry rawEntry) (Profile, error) {
	var mode QueryMode
	switch entry.QueryType {
	case "read_raw":
		mode = RawRead
	case "binary_values":
		mode = BinaryBlock
	case "ascii_values":
		mode = AsciiBlock
	case "":
		return Profile{}, &SchemaError{Name: name, Reason: "missing query_type"}
	default:
		return Profile{}, &SchemaError{Name: name, Reason: fmt.Sprintf("unknown query_type %q", entry.QueryType)}
	}

	if entry.QueryCommand == "" && mode != RawRead {
		return Profile{}, &SchemaError{Name: name, Reason: "missing query_command"}
	}

	var format Format
	switch entry.FileType {
	case "PNG":
		format = PNG
	case "BMP":
		format = BMP
	case "JPG":
		format = JPG
	case "":
		return Profile{}, &SchemaError{Name: name, Reason: "missing file_type"}
	default:
		return Profile{}, &SchemaError{Name: name, Reason: fmt.Sprintf("unknown file_type %q", entry.FileType)}
	}

	var params *BinaryParams
	switch mode {
	case BinaryBlock, AsciiBlock:
		if entry.BinaryParams == nil {
			return Profile{}, &SchemaError{Name: name, Reason: entry.QueryType + " requires binary_params"}
		}
		if entry.BinaryParams.Delay < 0 {
			return Profile{}, &SchemaError{Name: name, Reason: "binary_params.delay must be >= 0"}
		}
		datatype := entry.BinaryParams.Datatype
		if datatype == "" {
			datatype = "B"
		}
		if datatype != "B" {
			return Profile{}, &SchemaError{Name: name, Reason: fmt.Sprintf("unsupported datatype %q", datatype)}
		}
		container := entry.BinaryParams.Container
		if container == "" {
			container = "bytearray"
		}
		params = &BinaryParams{
			Datatype:  datatype,
			Container: container,
			Delay:     time.Duration(entry.BinaryParams.Delay * float64(time.Second)),
		}
	case RawRead:
		if entry.BinaryParams != nil {
			return Profile{}, &SchemaError{Name: name, Reason: "read_raw does not take binary_params"}
		}
	}

	commands := entry.Commands
	if commands == nil {
		commands = []string{}
	}

	return Profile{
		Name:          name,
		SetupCommands: commands,
		QueryMode:     mode,
		QueryCommand:  entry.QueryCommand,
		OutputFormat:  format,
		BinaryParams:  params,
	}, nil
}
