// Package db provides the database and Redis connection plumbing for the
// account and session stores.
package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wikifed/shibgate/internal/slogging"
)

// GormDB wraps a GORM database connection
type GormDB struct {
	db *gorm.DB
}

// NewGormDB opens a PostgreSQL connection from a DATABASE_URL style
// connection string. TranslateError is enabled so driver unique-constraint
// violations surface as gorm.ErrDuplicatedKey; the reconciler's create-race
// handling depends on that mapping.
func NewGormDB(databaseURL string) (*GormDB, error) {
	log := slogging.Get()
	log.Debug("Opening database connection")

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to open database connection: %v", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}

	// Recycle connections proactively; cloud load balancers terminate
	// idle connections without notice.
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Error("Failed to ping database: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Debug("Database connection established")

	return &GormDB{db: db}, nil
}

// DB returns the underlying *gorm.DB
func (g *GormDB) DB() *gorm.DB {
	return g.db
}

// Close closes the database connection
func (g *GormDB) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	return sqlDB.Close()
}
