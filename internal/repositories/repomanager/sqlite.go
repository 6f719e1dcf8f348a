package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/vetintake/internal/dbx"
	"github.com/dmitrijs2005/vetintake/internal/migrations"
	"github.com/dmitrijs2005/vetintake/internal/repositories/scans"
	"github.com/dmitrijs2005/vetintake/internal/repositories/vaccinations"
	"github.com/dmitrijs2005/vetintake/internal/repositories/vaccines"
)

// SQLiteRepositoryManager vends repositories over a local SQLite file, used
// for single-workstation mode and tests.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Vaccines(db dbx.DBTX) vaccines.Repository {
	return vaccines.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Vaccinations(db dbx.DBTX) vaccinations.Repository {
	return vaccinations.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Scans(db dbx.DBTX) scans.Repository {
	return scans.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.SQLite)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, "sqlite")
}
