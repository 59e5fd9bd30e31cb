package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wikifed/shibgate/auth/models"
	"github.com/wikifed/shibgate/internal/slogging"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db     *gorm.DB
	logger *slogging.Logger
}

// NewGormAccountRepository creates a new GORM-backed account repository.
// The *gorm.DB must be opened with TranslateError enabled so unique
// constraint violations surface as gorm.ErrDuplicatedKey.
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{
		db:     db,
		logger: slogging.Get(),
	}
}

// GetByUsername retrieves an account by canonical username
func (r *GormAccountRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	var row models.Account
	result := r.db.WithContext(ctx).Where("username = ?", username).First(&row)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		r.logger.Error("GetByUsername: database query failed for username=%s: %v", username, result.Error)
		return nil, fmt.Errorf("failed to get account: %w", result.Error)
	}

	return convertModelToAccount(&row), nil
}

// Create persists a new account, generating its UUID and timestamps when
// not supplied. A username collision returns ErrDuplicateAccount.
func (r *GormAccountRepository) Create(ctx context.Context, account *Account) (*Account, error) {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.ModifiedAt.IsZero() {
		account.ModifiedAt = now
	}

	row := convertAccountToModel(account)

	result := r.db.WithContext(ctx).Create(row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("failed to create account: %w", result.Error)
	}

	return convertModelToAccount(row), nil
}

// SetPasswordDisabled updates the password_disabled flag for an account
func (r *GormAccountRepository) SetPasswordDisabled(ctx context.Context, id string, disabled bool) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Update("password_disabled", disabled)

	if result.Error != nil {
		return fmt.Errorf("failed to update password flag: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// TouchLastLogin records a successful login time
func (r *GormAccountRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Update("last_login", at)

	if result.Error != nil {
		return fmt.Errorf("failed to update last login: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// AddGroup adds a group membership; re-adding an existing pair is a no-op
func (r *GormAccountRepository) AddGroup(ctx context.Context, accountID, group string) error {
	membership := &models.GroupMembership{
		AccountID: accountID,
		GroupName: group,
	}

	result := r.db.WithContext(ctx).Create(membership)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to add group %s: %w", group, result.Error)
	}

	return nil
}

// RemoveGroup removes a single group membership
func (r *GormAccountRepository) RemoveGroup(ctx context.Context, accountID, group string) error {
	result := r.db.WithContext(ctx).
		Where("account_id = ? AND group_name = ?", accountID, group).
		Delete(&models.GroupMembership{})

	if result.Error != nil {
		return fmt.Errorf("failed to remove group %s: %w", group, result.Error)
	}

	return nil
}

// ListGroups returns the account's current group names, ordered by name
func (r *GormAccountRepository) ListGroups(ctx context.Context, accountID string) ([]string, error) {
	var groups []string
	result := r.db.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("account_id = ?", accountID).
		Order("group_name").
		Pluck("group_name", &groups)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list groups: %w", result.Error)
	}

	return groups, nil
}

// ClearGroups removes every membership for the account
func (r *GormAccountRepository) ClearGroups(ctx context.Context, accountID string) error {
	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&models.GroupMembership{})

	if result.Error != nil {
		return fmt.Errorf("failed to clear groups: %w", result.Error)
	}

	return nil
}

// convertModelToAccount converts a GORM Account model to a repository Account
func convertModelToAccount(m *models.Account) *Account {
	return &Account{
		ID:               m.ID,
		Username:         m.Username,
		DisplayName:      m.DisplayName,
		Email:            m.Email,
		PasswordDisabled: m.PasswordDisabled,
		CreatedAt:        m.CreatedAt,
		ModifiedAt:       m.ModifiedAt,
		LastLogin:        m.LastLogin,
	}
}

// convertAccountToModel converts a repository Account to a GORM Account model
func convertAccountToModel(a *Account) *models.Account {
	return &models.Account{
		ID:               a.ID,
		Username:         a.Username,
		DisplayName:      a.DisplayName,
		Email:            a.Email,
		PasswordDisabled: a.PasswordDisabled,
		CreatedAt:        a.CreatedAt,
		ModifiedAt:       a.ModifiedAt,
		LastLogin:        a.LastLogin,
	}
}
