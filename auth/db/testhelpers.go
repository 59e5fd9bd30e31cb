package db

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wikifed/shibgate/auth/models"
)

// TestDB holds a test database connection and cleanup function
type TestDB struct {
	DB      *gorm.DB
	Cleanup func()
}

// NewTestDB creates a new in-memory SQLite database for testing. It
// migrates all models and returns a cleanup function. TranslateError is
// enabled to match production behavior for duplicate-key detection.
func NewTestDB(t *testing.T) (*TestDB, error) {
	t.Helper()

	// A uniquely named shared-cache database keeps tests isolated from
	// each other while letting every pooled connection see the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// SQLite allows one writer; serialize connections so concurrent
	// create-race tests hit the unique constraint instead of SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return nil, err
	}

	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}

	return &TestDB{
		DB:      db,
		Cleanup: cleanup,
	}, nil
}

// MustCreateTestDB creates a test DB, failing the test on error.
func MustCreateTestDB(t *testing.T) *TestDB {
	t.Helper()

	tdb, err := NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	return tdb
}
