package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/entries"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/quotas"
)

// RepositoryManager vends repositories bound to a handle, so the same code
// can run against *sql.DB or inside a *sql.Tx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Entries(db dbx.DBTX) entries.Repository
	Expenses(db dbx.DBTX) expenses.Repository
	Quotas(db dbx.DBTX) quotas.Repository
}
