package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/attendly/internal/access"
	"github.com/campushq/attendly/internal/models"
	"github.com/campushq/attendly/internal/repository"
	appErrors "github.com/campushq/attendly/pkg/errors"
	"github.com/campushq/attendly/pkg/export"
	"github.com/campushq/attendly/pkg/storage"
)

var reportHeaders = []string{"Student Name", "Student ID", "Total Days", "Present Days", "Absent Days", "Attendance %"}

type fileSink interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

// ReportService aggregates ledger entries into percentage reports and
// renders them for export.
type ReportService struct {
	directory *repository.Directory
	ledger    *repository.Ledger
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	files     fileSink
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewReportService constructs the report service. files may be nil when
// file export is not configured.
func NewReportService(directory *repository.Directory, ledger *repository.Ledger, files *storage.LocalStorage, logger *zap.Logger, metrics *MetricsService) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ReportService{
		directory: directory,
		ledger:    ledger,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		metrics:   metrics,
	}
	if files != nil {
		svc.files = files
	}
	return svc
}

// Compute aggregates attendance for every accessible student over the
// inclusive [startDate, endDate] range. Only days with an explicit ledger
// entry count toward totals; students with no recorded days are omitted.
// studentID optionally narrows the report to a single accessible student.
// Result order follows directory insertion order.
func (s *ReportService) Compute(actor models.User, studentID, startDate, endDate string) ([]models.ReportRow, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date, expected YYYY-MM-DD")
	}
	if start.After(end) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "start date cannot be after end date")
	}

	began := time.Now()

	candidates := access.FilterStudents(s.directory.List(), actor)
	if studentID != "" {
		var match *models.Student
		for i := range candidates {
			if candidates[i].ID == studentID {
				match = &candidates[i]
				break
			}
		}
		if match == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found or not accessible")
		}
		candidates = []models.Student{*match}
	}

	rows := make([]models.ReportRow, 0, len(candidates))
	for _, student := range candidates {
		total, present := 0, 0
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			status, ok := s.ledger.Entry(day.Format(dateLayout), student.ID)
			if !ok {
				continue
			}
			total++
			if status == models.StatusPresent {
				present++
			}
		}
		if total == 0 {
			continue
		}
		rows = append(rows, models.ReportRow{
			Name:        student.Name,
			ID:          student.ID,
			TotalDays:   total,
			PresentDays: present,
			AbsentDays:  total - present,
			Percentage:  math.Round(float64(present)/float64(total)*1000) / 10,
		})
	}

	s.metrics.RecordReport(time.Since(began))
	return rows, nil
}

// ClassifyPercentage buckets a percentage for display styling.
func ClassifyPercentage(p float64) models.Band {
	switch {
	case p >= 80:
		return models.BandHigh
	case p >= 60:
		return models.BandMedium
	default:
		return models.BandLow
	}
}

// ToCSV renders a report as CSV text: a header row plus one row per entry.
// The free-text name field is always quoted, with embedded quotes doubled
// per RFC 4180; numeric fields stay bare.
func (s *ReportService) ToCSV(rows []models.ReportRow) string {
	var b strings.Builder
	b.WriteString(strings.Join(reportHeaders, ","))
	for _, row := range rows {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%s,%s,%d,%d,%d,%.1f",
			quoteField(row.Name), row.ID, row.TotalDays, row.PresentDays, row.AbsentDays, row.Percentage)
	}
	return b.String()
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Export renders the report in the requested format and writes it under
// the exports directory. The returned path is relative to that directory.
func (s *ReportService) Export(rows []models.ReportRow, format models.ReportFormat, startDate, endDate string) (string, error) {
	if s.files == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "file export is not configured")
	}
	if len(rows) == 0 {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no data to export")
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Attendance Report %s to %s", startDate, endDate),
		Headers: reportHeaders,
		Rows:    make([][]string, len(rows)),
	}
	for i, row := range rows {
		dataset.Rows[i] = []string{
			row.Name,
			row.ID,
			fmt.Sprintf("%d", row.TotalDays),
			fmt.Sprintf("%d", row.PresentDays),
			fmt.Sprintf("%d", row.AbsentDays),
			fmt.Sprintf("%.1f", row.Percentage),
		}
	}

	var payload []byte
	var err error
	switch format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render report")
	}

	filename := fmt.Sprintf("attendance_report_%s_to_%s.%s", startDate, endDate, format)
	if _, err := s.files.Save(filename, payload); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to write report file")
	}

	s.metrics.RecordExport(string(format))
	s.logger.Info("report exported", zap.String("file", filename), zap.Int("rows", len(rows)))
	return filename, nil
}
