// Package models defines the GORM models backing the account store.
package models

import "time"

// Account is the durable local account a federated principal resolves to.
// Display name and email are set only at creation; group memberships are
// mutable at every login. The username carries a unique constraint — the
// create-race between concurrent first logins is resolved by the database,
// not by application locking.
type Account struct {
	ID               string     `gorm:"column:id;primaryKey;type:varchar(36)"`
	Username         string     `gorm:"column:username;uniqueIndex;not null"`
	DisplayName      string     `gorm:"column:display_name"`
	Email            string     `gorm:"column:email"`
	PasswordDisabled bool       `gorm:"column:password_disabled;not null;default:true"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	ModifiedAt       time.Time  `gorm:"column:modified_at;autoUpdateTime"`
	LastLogin        *time.Time `gorm:"column:last_login"`
}

// TableName returns the database table name for Account
func (Account) TableName() string {
	return "accounts"
}

// GroupMembership relates an account to one group name. The pair is
// unique; re-adding an existing membership is a no-op at the store level.
type GroupMembership struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	AccountID string    `gorm:"column:account_id;uniqueIndex:idx_account_group;not null;type:varchar(36)"`
	GroupName string    `gorm:"column:group_name;uniqueIndex:idx_account_group;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the database table name for GroupMembership
func (GroupMembership) TableName() string {
	return "group_memberships"
}

// AllModels returns every model migrated by the schema bootstrapper
func AllModels() []any {
	return []any{
		&Account{},
		&GroupMembership{},
	}
}
