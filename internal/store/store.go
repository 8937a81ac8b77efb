package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store manages persistence of capture history and raw command logs.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at the given directory (typically the app
// config dir).
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) historyDir() string {
	return filepath.Join(s.root, "history")
}

// AddCapture appends a capture record.
func (s *Store) AddCapture(r CaptureRecord) error {
	return s.appendRecord("captures.json", r)
}

// Captures returns all capture records.
func (s *Store) Captures() ([]CaptureRecord, error) {
	var records []CaptureRecord
	err := s.loadRecords("captures.json", &records)
	return records, err
}

// AddCommand appends a raw SCPI console command record.
func (s *Store) AddCommand(r CommandRecord) error {
	return s.appendRecord("commands.json", r)
}

// Commands returns all console command records.
func (s *Store) Commands() ([]CommandRecord, error) {
	var records []CommandRecord
	err := s.loadRecords("commands.json", &records)
	return records, err
}

func (s *Store) appendRecord(filename string, record any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.historyDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, filename)

	// Read existing records
	var records []json.RawMessage
	if data, err := os.ReadFile(path); err == nil {
		json.Unmarshal(data, &records)
	}

	// Marshal and append new record
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	records = append(records, raw)

	// Write back
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) loadRecords(filename string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.historyDir(), filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, dest)
}
