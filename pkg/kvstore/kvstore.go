// Package kvstore defines the blob storage contract the attendance core
// persists through, together with the available backends. Each logical
// collection (students, ledger, users, recent logins) is one opaque blob
// saved whole on every mutation; there are no partial writes and no
// transactions spanning keys.
package kvstore

import (
	"context"
	"errors"
)

// Well-known blob keys. They mirror the collection names the data
// originally lived under so existing exports remain recognisable.
const (
	KeyStudents     = "attendanceStudents"
	KeyLedger       = "attendanceData"
	KeyUsers        = "attendanceUsers"
	KeyRecentLogins = "attendanceRecentLogins"
)

// ErrKeyNotFound reports that no blob exists for the requested key.
// Absence is an ordinary condition, not a failure.
var ErrKeyNotFound = errors.New("kvstore: key not found")

// Store is the storage collaborator contract.
type Store interface {
	// Load returns the blob stored under key, or ErrKeyNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save overwrites the blob under key atomically with respect to readers.
	Save(ctx context.Context, key string, blob []byte) error
	// Remove deletes the blob under key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error
}
