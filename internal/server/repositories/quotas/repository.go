package quotas

import (
	"context"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/server/models"
)

// Repository persists per-user subscription state and usage counters.
// Counter updates are single statements so concurrent callers never lose
// an increment.
type Repository interface {
	Create(ctx context.Context, q *models.UserQuota) error
	Get(ctx context.Context, userID string) (*models.UserQuota, error)
	GetForUpdate(ctx context.Context, userID string) (*models.UserQuota, error)
	IncrementEntryCount(ctx context.Context, userID string) (int64, error)
	IncrementDailyQuestions(ctx context.Context, userID string, today time.Time) (int64, error)
	StartTrial(ctx context.Context, userID string, start, end time.Time) error
	SetPremium(ctx context.Context, userID string, premium bool) error
}
