package models

// ReportRow aggregates one student's attendance over a date range. Only
// days with an explicit ledger entry count toward the totals.
type ReportRow struct {
	Name        string  `json:"name"`
	ID          string  `json:"id"`
	TotalDays   int     `json:"totalDays"`
	PresentDays int     `json:"presentDays"`
	AbsentDays  int     `json:"absentDays"`
	Percentage  float64 `json:"percentage"`
}

// Band buckets a percentage for display styling.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// ReportFormat selects a file export rendering.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)
