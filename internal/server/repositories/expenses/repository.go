package expenses

import (
	"context"

	"github.com/dmitrijs2005/voicediary/internal/server/models"
)

// Repository persists expenses. Rows are only ever inserted.
type Repository interface {
	Create(ctx context.Context, expense *models.Expense) error
	ListByEntry(ctx context.Context, entryID string) ([]*models.Expense, error)
}
