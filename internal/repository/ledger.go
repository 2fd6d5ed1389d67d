package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/campushq/attendly/internal/models"
	"github.com/campushq/attendly/pkg/kvstore"
)

// Ledger is the date-indexed attendance table. Mutators operate on memory;
// Save persists the whole table as one blob. Cascade mutations (rename,
// remove) complete in memory before any write so a crash can never leave
// the old and new id visible at once.
type Ledger struct {
	store  kvstore.Store
	logger *zap.Logger
	days   models.LedgerData
}

// NewLedger constructs an empty ledger over the given store.
func NewLedger(store kvstore.Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, logger: logger, days: make(models.LedgerData)}
}

// Load reads the ledger blob, starting empty when none exists.
func (l *Ledger) Load(ctx context.Context) error {
	blob, err := l.store.Load(ctx, kvstore.KeyLedger)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			l.days = make(models.LedgerData)
			return nil
		}
		return fmt.Errorf("load ledger: %w", err)
	}
	days := make(models.LedgerData)
	if err := json.Unmarshal(blob, &days); err != nil {
		return fmt.Errorf("decode ledger blob: %w", err)
	}
	l.days = days
	return nil
}

// Save writes the whole table as one blob.
func (l *Ledger) Save(ctx context.Context) error {
	blob, err := json.Marshal(l.days)
	if err != nil {
		return fmt.Errorf("encode ledger blob: %w", err)
	}
	if err := l.store.Save(ctx, kvstore.KeyLedger, blob); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Status returns the stored status for (date, studentID), defaulting to
// absent when no entry exists. Absence of a record is the default state,
// not an error.
func (l *Ledger) Status(date, studentID string) models.Status {
	if st, ok := l.days[date][studentID]; ok {
		return st
	}
	return models.StatusAbsent
}

// Entry returns the explicit entry for (date, studentID) and whether one
// exists. Report aggregation counts only explicit entries.
func (l *Ledger) Entry(date, studentID string) (models.Status, bool) {
	st, ok := l.days[date][studentID]
	return st, ok
}

// Mark upserts the status for (date, studentID), creating the date bucket
// if absent. Idempotent.
func (l *Ledger) Mark(date, studentID string, status models.Status) {
	bucket, ok := l.days[date]
	if !ok {
		bucket = make(models.DayRecord)
		l.days[date] = bucket
	}
	bucket[studentID] = status
}

// Unmark removes the explicit entry for (date, studentID), restoring the
// previous in-memory state after a failed persist.
func (l *Ledger) Unmark(date, studentID string) {
	bucket, ok := l.days[date]
	if !ok {
		return
	}
	delete(bucket, studentID)
	if len(bucket) == 0 {
		delete(l.days, date)
	}
}

// Rename moves every entry for oldID to newID across all date buckets.
func (l *Ledger) Rename(oldID, newID string) int {
	moved := 0
	for _, bucket := range l.days {
		if st, ok := bucket[oldID]; ok {
			bucket[newID] = st
			delete(bucket, oldID)
			moved++
		}
	}
	return moved
}

// RemoveStudent deletes every entry for id across all date buckets.
func (l *Ledger) RemoveStudent(id string) int {
	removed := 0
	for date, bucket := range l.days {
		if _, ok := bucket[id]; ok {
			delete(bucket, id)
			removed++
			if len(bucket) == 0 {
				delete(l.days, date)
			}
		}
	}
	return removed
}

// Day returns a copy of the bucket for one date.
func (l *Ledger) Day(date string) models.DayRecord {
	bucket := l.days[date]
	out := make(models.DayRecord, len(bucket))
	for id, st := range bucket {
		out[id] = st
	}
	return out
}

// Snapshot returns a deep copy of the whole table, used to restore memory
// when a cascading persist fails partway.
func (l *Ledger) Snapshot() models.LedgerData {
	out := make(models.LedgerData, len(l.days))
	for date, bucket := range l.days {
		cp := make(models.DayRecord, len(bucket))
		for id, st := range bucket {
			cp[id] = st
		}
		out[date] = cp
	}
	return out
}

// Restore replaces the in-memory table with a previously taken snapshot.
func (l *Ledger) Restore(snapshot models.LedgerData) {
	l.days = snapshot
}
