package sqlite

import (
	"context"
	"embed"

	"github.com/garyjia/claimdesk/pkg/database"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate creates the claim schema in db
func Migrate(ctx context.Context, db *database.DB, logger *zap.Logger) error {
	return database.NewMigrator(db, logger).RunMigrations(ctx, migrationFS, "migrations")
}
