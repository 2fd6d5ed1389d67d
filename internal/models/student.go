package models

import "time"

// Stream is an academic program code, used both as a student grouping and
// as an access-control partition.
type Stream string

const (
	StreamBCA  Stream = "BCA"
	StreamBBA  Stream = "BBA"
	StreamPMIR Stream = "PMIR"
)

// KnownStreams lists every stream the system tracks.
func KnownStreams() []Stream {
	return []Stream{StreamBCA, StreamBBA, StreamPMIR}
}

// Valid returns true when the stream is a known value.
func (s Stream) Valid() bool {
	switch s {
	case StreamBCA, StreamBBA, StreamPMIR:
		return true
	default:
		return false
	}
}

// Student represents a learner in the directory. The ID is derived
// deterministically from (Stream, Year, RollNumber) and must stay in sync
// with them; at most one student exists per ID.
//
// Records imported from older data may carry only an ID. Such legacy
// records are migrated to structured form at load time by decoding the ID.
type Student struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Stream     Stream    `json:"stream,omitempty"`
	Year       int       `json:"year,omitempty"`
	RollNumber int       `json:"rollNumber,omitempty"`
	DateAdded  time.Time `json:"dateAdded"`
}

// Structured reports whether the record carries the derived fields or is a
// legacy id-only entry.
func (s Student) Structured() bool {
	return s.Stream != "" && s.Year != 0 && s.RollNumber != 0
}
