package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/attendly/internal/access"
	"github.com/campushq/attendly/internal/models"
	"github.com/campushq/attendly/internal/repository"
	"github.com/campushq/attendly/internal/studentid"
	appErrors "github.com/campushq/attendly/pkg/errors"
)

// StudentService applies directory rules: derived ids, duplicate checks,
// roll range, stream access, and the ledger cascades that keep both blobs
// consistent. Every mutator is all-or-nothing; on any failure the prior
// in-memory state is restored and nothing partial persists.
type StudentService struct {
	directory *repository.Directory
	ledger    *repository.Ledger
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewStudentService constructs the student service.
func NewStudentService(directory *repository.Directory, ledger *repository.Ledger, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &StudentService{directory: directory, ledger: ledger, validator: validate, logger: logger, metrics: metrics}
	registerStreamValidation(svc.validator)
	return svc
}

func registerStreamValidation(v *validator.Validate) {
	_ = v.RegisterValidation("stream", func(fl validator.FieldLevel) bool {
		return models.Stream(fl.Field().String()).Valid()
	})
}

// AddStudentRequest holds payload for adding a student.
type AddStudentRequest struct {
	Name       string        `json:"name" validate:"required"`
	Stream     models.Stream `json:"stream" validate:"required,stream"`
	Year       int           `json:"year" validate:"required,min=2000,max=2099"`
	RollNumber int           `json:"rollNumber" validate:"required"`
}

// UpdateStudentRequest holds payload for editing a student.
type UpdateStudentRequest struct {
	Name       string        `json:"name" validate:"required"`
	Stream     models.Stream `json:"stream" validate:"required,stream"`
	Year       int           `json:"year" validate:"required,min=2000,max=2099"`
	RollNumber int           `json:"rollNumber" validate:"required"`
}

// List returns the students the acting user may see, in insertion order.
func (s *StudentService) List(actor models.User) []models.Student {
	return access.FilterStudents(s.directory.List(), actor)
}

// Get returns a single student visible to the acting user.
func (s *StudentService) Get(actor models.User, id string) (*models.Student, error) {
	student, ok := s.directory.Find(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if !access.CanAccess(actor, student.Stream) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you don't have permission to view this stream")
	}
	return &student, nil
}

// Add registers a new student under a freshly derived id.
func (s *StudentService) Add(ctx context.Context, actor models.User, req AddStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid student payload")
	}
	if req.RollNumber < 1 || req.RollNumber > 999 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roll number must be between 1 and 999")
	}
	if !access.CanAccess(actor, req.Stream) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you don't have permission to add students to this stream")
	}

	id := studentid.Encode(req.Stream, req.Year, req.RollNumber)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "stream, year and roll number are required")
	}
	if s.directory.Exists(id) {
		return nil, appErrors.Clone(appErrors.ErrDuplicateID, "student id already exists, use a different roll number")
	}

	student := models.Student{
		ID:         id,
		Name:       req.Name,
		Stream:     req.Stream,
		Year:       req.Year,
		RollNumber: req.RollNumber,
		DateAdded:  time.Now().UTC(),
	}

	s.directory.Append(student)
	if err := s.directory.Save(ctx); err != nil {
		s.directory.Delete(id)
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to persist student")
	}

	s.metrics.RecordStudentMutation("add")
	s.logger.Info("student added", zap.String("id", id), zap.String("stream", string(req.Stream)))
	return &student, nil
}

// Update edits a student's fields, recomputing the id. When the id changes,
// every ledger entry moves to the new id in the same logical transaction:
// both tables mutate in memory first, then the ledger blob is written
// before the directory blob so a crash between the writes cannot
// resurrect rows under the old id.
func (s *StudentService) Update(ctx context.Context, actor models.User, originalID string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid student payload")
	}
	if req.RollNumber < 1 || req.RollNumber > 999 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roll number must be between 1 and 999")
	}

	original, ok := s.directory.Find(originalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if !access.CanAccess(actor, req.Stream) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you don't have permission to move students into this stream")
	}

	newID := studentid.Encode(req.Stream, req.Year, req.RollNumber)
	if newID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "stream, year and roll number are required")
	}
	if newID != originalID && s.directory.Exists(newID) {
		return nil, appErrors.Clone(appErrors.ErrDuplicateID, "student id already exists, use a different roll number")
	}

	updated := original
	updated.ID = newID
	updated.Name = req.Name
	updated.Stream = req.Stream
	updated.Year = req.Year
	updated.RollNumber = req.RollNumber

	var snapshot models.LedgerData
	renamed := newID != originalID
	if renamed {
		snapshot = s.ledger.Snapshot()
		s.ledger.Rename(originalID, newID)
	}
	s.directory.Replace(originalID, updated)

	if renamed {
		if err := s.ledger.Save(ctx); err != nil {
			s.ledger.Restore(snapshot)
			s.directory.Replace(newID, original)
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to persist attendance records")
		}
	}
	if err := s.directory.Save(ctx); err != nil {
		if renamed {
			s.ledger.Restore(snapshot)
		}
		s.directory.Replace(newID, original)
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to persist student")
	}

	s.metrics.RecordStudentMutation("edit")
	s.logger.Info("student updated",
		zap.String("original_id", originalID),
		zap.String("id", newID),
		zap.Bool("renamed", renamed))
	return &updated, nil
}

// Remove deletes a student and cascades into the ledger, removing every
// attendance entry for the id. Removing an unknown id is a no-op.
func (s *StudentService) Remove(ctx context.Context, actor models.User, id string) error {
	student, ok := s.directory.Find(id)
	if !ok {
		return nil
	}
	if !access.CanAccess(actor, student.Stream) {
		return appErrors.Clone(appErrors.ErrForbidden, "you don't have permission to delete students in this stream")
	}

	ledgerSnap := s.ledger.Snapshot()
	directorySnap := s.directory.Snapshot()
	s.ledger.RemoveStudent(id)
	s.directory.Delete(id)

	if err := s.ledger.Save(ctx); err != nil {
		s.ledger.Restore(ledgerSnap)
		s.directory.Restore(directorySnap)
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to persist attendance records")
	}
	if err := s.directory.Save(ctx); err != nil {
		s.ledger.Restore(ledgerSnap)
		s.directory.Restore(directorySnap)
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, "failed to persist student removal")
	}

	s.metrics.RecordStudentMutation("delete")
	s.logger.Info("student removed", zap.String("id", id))
	return nil
}
