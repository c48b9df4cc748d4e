// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/server/migrations"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/entries"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/quotas"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Entries returns an entries.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewPostgresRepository(db)
}

// Expenses returns an expenses.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Expenses(db dbx.DBTX) expenses.Repository {
	return expenses.NewPostgresRepository(db)
}

// Quotas returns a quotas.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Quotas(db dbx.DBTX) quotas.Repository {
	return quotas.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
