package store

import "time"

// CaptureRecord is the outcome of one screenshot capture.
type CaptureRecord struct {
	Instrument   string    `json:"instrument"`
	ProfileClass string    `json:"profile_class"`
	VisaID       string    `json:"visa_id"`
	Timestamp    time.Time `json:"timestamp"`
	Success      bool      `json:"success"`
	Duration     string    `json:"duration"`
	File         string    `json:"file,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// CommandRecord is one raw SCPI command sent from the console page.
type CommandRecord struct {
	VisaID    string    `json:"visa_id"`
	Command   string    `json:"command"`
	Reply     string    `json:"reply,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
