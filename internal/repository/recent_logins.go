package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/attendly/internal/models"
	"github.com/campushq/attendly/pkg/kvstore"
)

// recentLoginLimit caps the stored history.
const recentLoginLimit = 5

// RecentLogins is the username-only login history, most recent last in
// storage, capped at five entries.
type RecentLogins struct {
	store   kvstore.Store
	logger  *zap.Logger
	entries []models.RecentLogin
}

// NewRecentLogins constructs an empty history over the given store.
func NewRecentLogins(store kvstore.Store, logger *zap.Logger) *RecentLogins {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecentLogins{store: store, logger: logger}
}

// Load reads the history blob, starting empty when none exists.
func (r *RecentLogins) Load(ctx context.Context) error {
	blob, err := r.store.Load(ctx, kvstore.KeyRecentLogins)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			r.entries = nil
			return nil
		}
		return fmt.Errorf("load recent logins: %w", err)
	}
	var entries []models.RecentLogin
	if err := json.Unmarshal(blob, &entries); err != nil {
		return fmt.Errorf("decode recent logins blob: %w", err)
	}
	r.entries = entries
	return nil
}

// Save writes the history as one blob.
func (r *RecentLogins) Save(ctx context.Context) error {
	blob, err := json.Marshal(r.entries)
	if err != nil {
		return fmt.Errorf("encode recent logins blob: %w", err)
	}
	if err := r.store.Save(ctx, kvstore.KeyRecentLogins, blob); err != nil {
		return fmt.Errorf("save recent logins: %w", err)
	}
	return nil
}

// Add records a login for the username, deduplicating earlier entries and
// trimming to the cap.
func (r *RecentLogins) Add(username string, at time.Time) {
	filtered := make([]models.RecentLogin, 0, len(r.entries)+1)
	for _, e := range r.entries {
		if e.Username != username {
			filtered = append(filtered, e)
		}
	}
	filtered = append(filtered, models.RecentLogin{Username: username, LoginDate: at})
	if len(filtered) > recentLoginLimit {
		filtered = filtered[len(filtered)-recentLoginLimit:]
	}
	r.entries = filtered
}

// List returns the history most recent first.
func (r *RecentLogins) List() []models.RecentLogin {
	out := make([]models.RecentLogin, len(r.entries))
	for i, e := range r.entries {
		out[len(r.entries)-1-i] = e
	}
	return out
}

// Clear wipes the history in memory and in storage.
func (r *RecentLogins) Clear(ctx context.Context) error {
	r.entries = nil
	if err := r.store.Remove(ctx, kvstore.KeyRecentLogins); err != nil {
		return fmt.Errorf("clear recent logins: %w", err)
	}
	return nil
}
