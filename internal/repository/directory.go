// Package repository holds the session's in-memory collections and their
// explicit load/save boundaries against the blob store. Mutators change
// memory only; callers decide when (and in which order) blobs are written.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/campushq/attendly/internal/models"
	"github.com/campushq/attendly/internal/studentid"
	"github.com/campushq/attendly/pkg/kvstore"
)

// Directory is the in-memory student collection, keyed by derived id,
// preserving insertion order.
type Directory struct {
	store    kvstore.Store
	logger   *zap.Logger
	students []models.Student
	index    map[string]int
}

// NewDirectory constructs an empty directory over the given store.
func NewDirectory(store kvstore.Store, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{store: store, logger: logger, index: make(map[string]int)}
}

// Load reads the students blob. Legacy id-only records are migrated to
// structured form by decoding their id, and the migrated blob is written
// back once so the conversion never repeats.
func (d *Directory) Load(ctx context.Context) error {
	blob, err := d.store.Load(ctx, kvstore.KeyStudents)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			d.students = nil
			d.reindex()
			return nil
		}
		return fmt.Errorf("load students: %w", err)
	}

	var students []models.Student
	if err := json.Unmarshal(blob, &students); err != nil {
		return fmt.Errorf("decode students blob: %w", err)
	}

	migrated := 0
	for i, s := range students {
		if s.Structured() {
			continue
		}
		stream, year, roll, ok := studentid.Decode(s.ID)
		if !ok {
			d.logger.Warn("unparseable legacy student id", zap.String("id", s.ID))
			continue
		}
		students[i].Stream = stream
		students[i].Year = year
		students[i].RollNumber = roll
		migrated++
	}

	d.students = students
	d.reindex()

	if migrated > 0 {
		d.logger.Info("migrated legacy student records", zap.Int("count", migrated))
		return d.Save(ctx)
	}
	return nil
}

// Save writes the whole collection as one blob.
func (d *Directory) Save(ctx context.Context) error {
	blob, err := json.Marshal(d.students)
	if err != nil {
		return fmt.Errorf("encode students blob: %w", err)
	}
	if err := d.store.Save(ctx, kvstore.KeyStudents, blob); err != nil {
		return fmt.Errorf("save students: %w", err)
	}
	return nil
}

// List returns a copy of the students in insertion order.
func (d *Directory) List() []models.Student {
	out := make([]models.Student, len(d.students))
	copy(out, d.students)
	return out
}

// Find returns the student with the given id.
func (d *Directory) Find(id string) (models.Student, bool) {
	i, ok := d.index[id]
	if !ok {
		return models.Student{}, false
	}
	return d.students[i], true
}

// Exists reports whether a student with the given id is present.
func (d *Directory) Exists(id string) bool {
	_, ok := d.index[id]
	return ok
}

// Count returns the number of students.
func (d *Directory) Count() int {
	return len(d.students)
}

// Append adds a student to the end of the collection.
func (d *Directory) Append(student models.Student) {
	d.students = append(d.students, student)
	d.index[student.ID] = len(d.students) - 1
}

// Replace swaps the record stored under originalID for the updated student,
// keeping its position. The updated record may carry a different id.
func (d *Directory) Replace(originalID string, student models.Student) bool {
	i, ok := d.index[originalID]
	if !ok {
		return false
	}
	d.students[i] = student
	if student.ID != originalID {
		delete(d.index, originalID)
		d.index[student.ID] = i
	}
	return true
}

// Delete removes the student with the given id. Absent ids are a no-op.
func (d *Directory) Delete(id string) bool {
	i, ok := d.index[id]
	if !ok {
		return false
	}
	d.students = append(d.students[:i], d.students[i+1:]...)
	d.reindex()
	return true
}

// Snapshot returns a copy of the collection, used to restore memory when a
// cascading persist fails partway.
func (d *Directory) Snapshot() []models.Student {
	out := make([]models.Student, len(d.students))
	copy(out, d.students)
	return out
}

// Restore replaces the in-memory collection with a previous snapshot.
func (d *Directory) Restore(snapshot []models.Student) {
	d.students = snapshot
	d.reindex()
}

func (d *Directory) reindex() {
	d.index = make(map[string]int, len(d.students))
	for i, s := range d.students {
		d.index[s.ID] = i
	}
}
