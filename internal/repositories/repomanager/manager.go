// Package repomanager vends repository implementations for one database
// dialect, bound to whatever dbx.DBTX the caller holds (a pool or a
// transaction), and runs the embedded schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/vetintake/internal/dbx"
	"github.com/dmitrijs2005/vetintake/internal/repositories/scans"
	"github.com/dmitrijs2005/vetintake/internal/repositories/vaccinations"
	"github.com/dmitrijs2005/vetintake/internal/repositories/vaccines"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Vaccines(db dbx.DBTX) vaccines.Repository
	Vaccinations(db dbx.DBTX) vaccinations.Repository
	Scans(db dbx.DBTX) scans.Repository
}

// New returns the manager for a database driver name as accepted by dbx.Open.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case "pgx":
		return NewPostgresRepositoryManager(), nil
	case "sqlite":
		return NewSQLiteRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("no repositories for driver %q", driver)
	}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}
