package entries

import (
	"context"

	"github.com/dmitrijs2005/voicediary/internal/server/entrystate"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/shopspring/decimal"
)

// Repository persists diary entries. Status-changing methods are
// compare-and-swap on the prior status.
type Repository interface {
	Create(ctx context.Context, entry *models.Entry) error
	GetByID(ctx context.Context, id string) (*models.Entry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Entry, error)
	Delete(ctx context.Context, id, userID string) error

	UpdateStatus(ctx context.Context, id string, from, to entrystate.Status) error
	SetTranscript(ctx context.Context, id, transcript string, from, to entrystate.Status) error
	SetTotalExpense(ctx context.Context, id string, total decimal.Decimal, from, to entrystate.Status) error

	SelectUnfinished(ctx context.Context) ([]string, error)
}
