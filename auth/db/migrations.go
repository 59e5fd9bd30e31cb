package db

import (
	"fmt"

	"github.com/wikifed/shibgate/auth/models"
	"github.com/wikifed/shibgate/internal/slogging"
)

// Migrate brings the account store schema up to date. The unique index on
// accounts.username is the serialization point for the create-race; it is
// created here, not assumed.
func (g *GormDB) Migrate() error {
	log := slogging.Get()
	log.Info("Running account store migrations")

	if err := g.db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info("Account store migrations complete")
	return nil
}
