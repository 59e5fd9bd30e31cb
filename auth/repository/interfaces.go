// Package repository provides the account store capability set consumed by
// the reconciliation pipeline. The interface abstracts the database so the
// pipeline can be exercised against Postgres in production and in-memory
// SQLite in tests.
package repository

import (
	"context"
	"errors"
	"time"
)

// Common errors returned by repositories
var (
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateAccount maps the store's unique-constraint violation on
	// username. Callers racing to create the same account fall back to
	// lookup when they see it.
	ErrDuplicateAccount = errors.New("account already exists")
)

// Account represents a durable account entity for repository operations
type Account struct {
	ID               string
	Username         string
	DisplayName      string
	Email            string
	PasswordDisabled bool
	CreatedAt        time.Time
	ModifiedAt       time.Time
	LastLogin        *time.Time
}

// AccountRepository is the capability set the host account store exposes
// to the reconciliation pipeline.
type AccountRepository interface {
	// GetByUsername retrieves an account by canonical username.
	// Returns ErrAccountNotFound if no such account exists.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// Create persists a new account. Returns ErrDuplicateAccount when an
	// account with the same username already exists.
	Create(ctx context.Context, account *Account) (*Account, error)

	// SetPasswordDisabled forcibly disables (or re-enables) local password
	// login for the account.
	SetPasswordDisabled(ctx context.Context, id string, disabled bool) error

	// TouchLastLogin records a successful login time.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	// AddGroup adds a group membership. Adding an existing membership is
	// a no-op.
	AddGroup(ctx context.Context, accountID, group string) error

	// RemoveGroup removes a single group membership.
	RemoveGroup(ctx context.Context, accountID, group string) error

	// ListGroups returns the account's current group names.
	ListGroups(ctx context.Context, accountID string) ([]string, error)

	// ClearGroups removes every membership for the account.
	ClearGroups(ctx context.Context, accountID string) error
}
