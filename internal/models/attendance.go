package models

// Status represents a student's presence state for one calendar day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Valid returns true when the status is a supported value.
func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// DayRecord maps student id to status for a single calendar day.
type DayRecord map[string]Status

// LedgerData is the persisted ledger shape: ISO calendar day to day record.
// Dates are opaque totally-ordered keys; callers supply consistent
// local-day strings.
type LedgerData map[string]DayRecord
