// Package registry maps discovered instrument model names to the profile
// class used to capture them. The mapping lives in a semicolon-delimited
// CSV file (model;class per row) so new instruments can be added without
// rebuilding.
package registry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUnknownModel marks a model with no registered profile class. The
// caller either gets a valid class name or this; never an ambiguous
// reference.
var ErrUnknownModel = errors.New("unknown instrument model")

// Registry is the immutable model-to-class mapping.
type Registry struct {
	classes map[string]string
}

// Load reads the mapping from a CSV file.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load registry %s: %w", path, err)
	}
	defer f.Close()
	r, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load registry %s: %w", path, err)
	}
	return r, nil
}

// Parse reads the mapping from CSV data: a header row, then one
// model;class row per instrument.
func Parse(r io.Reader) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	classes := make(map[string]string)
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: expected model;class, got %v", i+1, row)
		}
		model := strings.TrimSpace(row[0])
		class := strings.TrimSpace(row[1])
		if model == "" || class == "" {
			return nil, fmt.Errorf("row %d: empty model or class", i+1)
		}
		classes[model] = class
	}
	return &Registry{classes: classes}, nil
}

// Lookup returns the profile class for an instrument model name.
func (r *Registry) Lookup(model string) (string, error) {
	class, ok := r.classes[strings.TrimSpace(model)]
	if !ok {
		return "", fmt.Errorf("model %q: %w", model, ErrUnknownModel)
	}
	return class, nil
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	return len(r.classes)
}

// Classes returns the distinct profile classes, sorted.
func (r *Registry) Classes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, class := range r.classes {
		if !seen[class] {
			seen[class] = true
			out = append(out, class)
		}
	}
	sort.Strings(out)
	return out
}
