package migrations

import (
	"context"
	"errors"

	"gorm.io/gorm"

	petspostgres "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/persistence/postgres"
)

// Run creates the tables of every bounded context. Tables are only added or widened, never versioned.
func Run(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("migrations: database not configured")
	}
	return petspostgres.Migrate(ctx, db)
}
