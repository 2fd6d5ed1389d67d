package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campushq/attendly/internal/models"
	"github.com/campushq/attendly/pkg/kvstore"
)

// Users is the in-memory account list backed by the user blob.
type Users struct {
	store  kvstore.Store
	logger *zap.Logger
	users  []models.User
}

// NewUsers constructs an empty user collection over the given store.
func NewUsers(store kvstore.Store, logger *zap.Logger) *Users {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Users{store: store, logger: logger}
}

// Load reads the users blob, starting empty when none exists.
func (u *Users) Load(ctx context.Context) error {
	blob, err := u.store.Load(ctx, kvstore.KeyUsers)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			u.users = nil
			return nil
		}
		return fmt.Errorf("load users: %w", err)
	}
	var users []models.User
	if err := json.Unmarshal(blob, &users); err != nil {
		return fmt.Errorf("decode users blob: %w", err)
	}
	u.users = users
	return nil
}

// Save writes the whole list as one blob.
func (u *Users) Save(ctx context.Context) error {
	blob, err := json.Marshal(u.users)
	if err != nil {
		return fmt.Errorf("encode users blob: %w", err)
	}
	if err := u.store.Save(ctx, kvstore.KeyUsers, blob); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// Count returns the number of registered users.
func (u *Users) Count() int {
	return len(u.users)
}

// FindByUsername returns the user with the given username.
func (u *Users) FindByUsername(username string) (models.User, bool) {
	for _, user := range u.users {
		if user.Username == username {
			return user, true
		}
	}
	return models.User{}, false
}

// FindByEmail returns the user with the given email, case-insensitively.
func (u *Users) FindByEmail(email string) (models.User, bool) {
	for _, user := range u.users {
		if strings.EqualFold(user.Email, email) {
			return user, true
		}
	}
	return models.User{}, false
}

// FindByEmployeeID returns the user with the given employee id.
func (u *Users) FindByEmployeeID(employeeID string) (models.User, bool) {
	for _, user := range u.users {
		if user.EmployeeID == employeeID {
			return user, true
		}
	}
	return models.User{}, false
}

// Append adds a user to the list.
func (u *Users) Append(user models.User) {
	u.users = append(u.users, user)
}

// Drop removes the user with the given username, restoring prior state
// after a failed persist.
func (u *Users) Drop(username string) {
	for i, user := range u.users {
		if user.Username == username {
			u.users = append(u.users[:i], u.users[i+1:]...)
			return
		}
	}
}

// UpdatePassword replaces the stored hash for the given username.
func (u *Users) UpdatePassword(username, passwordHash string) bool {
	for i := range u.users {
		if u.users[i].Username == username {
			u.users[i].PasswordHash = passwordHash
			return true
		}
	}
	return false
}
