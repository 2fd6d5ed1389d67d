package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/attendly/internal/access"
	"github.com/campushq/attendly/internal/models"
	"github.com/campushq/attendly/internal/repository"
	appErrors "github.com/campushq/attendly/pkg/errors"
)

const dateLayout = "2006-01-02"

// AttendanceService coordinates daily presence marking against the ledger.
type AttendanceService struct {
	ledger    *repository.Ledger
	directory *repository.Directory
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(ledger *repository.Ledger, directory *repository.Directory, logger *zap.Logger, metrics *MetricsService) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{ledger: ledger, directory: directory, logger: logger, metrics: metrics}
}

// Status returns the recorded status for (date, studentID), defaulting to
// absent when nothing was recorded.
func (s *AttendanceService) Status(date, studentID string) models.Status {
	return s.ledger.Status(date, studentID)
}

// Day returns the explicit entries for one date, for roster display.
func (s *AttendanceService) Day(date string) models.DayRecord {
	return s.ledger.Day(date)
}

// Mark upserts a single student's status for a date. Idempotent: marking
// the same pair twice leaves the ledger unchanged.
func (s *AttendanceService) Mark(ctx context.Context, actor models.User, date, studentID string, status models.Status) error {
	if err := validateDate(date); err != nil {
		return err
	}
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "status must be present or absent")
	}
	student, ok := s.directory.Find(studentID)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if !access.CanAccess(actor, student.Stream) {
		return appErrors.Clone(appErrors.ErrForbidden, "you don't have permission to mark this stream")
	}

	prev, hadPrev := s.ledger.Entry(date, studentID)
	s.ledger.Mark(date, studentID, status)
	if err := s.ledger.Save(ctx); err != nil {
		if hadPrev {
			s.ledger.Mark(date, studentID, prev)
		} else {
			s.ledger.Unmark(date, studentID)
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to persist attendance")
	}

	s.metrics.RecordMarks(1)
	return nil
}

// MarkDay records a whole day for every student the actor may see.
// Students missing from statuses default to absent, mirroring an
// unmarked roster row. One write persists the full day.
func (s *AttendanceService) MarkDay(ctx context.Context, actor models.User, date string, statuses map[string]models.Status) error {
	if err := validateDate(date); err != nil {
		return err
	}
	roster := access.FilterStudents(s.directory.List(), actor)
	if len(roster) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no students to save attendance for")
	}
	for _, st := range statuses {
		if !st.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "status must be present or absent")
		}
	}

	snapshot := s.ledger.Snapshot()
	for _, student := range roster {
		status, ok := statuses[student.ID]
		if !ok {
			status = models.StatusAbsent
		}
		s.ledger.Mark(date, student.ID, status)
	}
	if err := s.ledger.Save(ctx); err != nil {
		s.ledger.Restore(snapshot)
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to persist attendance")
	}

	s.metrics.RecordMarks(len(roster))
	s.logger.Info("attendance saved", zap.String("date", date), zap.Int("students", len(roster)))
	return nil
}

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	return nil
}
