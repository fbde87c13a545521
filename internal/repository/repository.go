// Package repository implements SQLite persistence for applications,
// uploaded documents, and generated document versions.
package repository

import (
	"embed"
	"io/fs"

	"github.com/visaflow/visa-assistant/pkg/database"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the schema migrations embedded in this package.
func Migrate(db *database.DB, logger *zap.Logger) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	return database.NewMigrator(db, logger).Run(fsys)
}
