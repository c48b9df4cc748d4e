// Package quotas provides the PostgreSQL-backed repository for user quotas.
package quotas

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/common"
	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
)

const quotaColumns = `user_id, is_premium, subscription_kind, trial_start, trial_end,
	entry_count, daily_question_count, daily_question_date`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts q unless the user already has a quota row.
func (r *PostgresRepository) Create(ctx context.Context, q *models.UserQuota) error {
	query :=
		`INSERT INTO user_quotas (user_id, is_premium, subscription_kind, trial_start, trial_end)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, q.UserID, q.IsPremium, q.SubscriptionKind, q.TrialStart, q.TrialEnd)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.UserQuota, error) {
	return r.get(ctx, `SELECT `+quotaColumns+` FROM user_quotas WHERE user_id = $1`, userID)
}

// GetForUpdate reads the quota row and locks it until the surrounding
// transaction ends. Must be called through a *sql.Tx.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID string) (*models.UserQuota, error) {
	return r.get(ctx, `SELECT `+quotaColumns+` FROM user_quotas WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *PostgresRepository) get(ctx context.Context, query, userID string) (*models.UserQuota, error) {
	q := &models.UserQuota{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&q.UserID, &q.IsPremium, &q.SubscriptionKind, &q.TrialStart, &q.TrialEnd,
		&q.EntryCount, &q.DailyQuestionCount, &q.DailyQuestionDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return q, nil
}

func (r *PostgresRepository) IncrementEntryCount(ctx context.Context, userID string) (int64, error) {
	query :=
		`UPDATE user_quotas SET entry_count = entry_count + 1
		 WHERE user_id = $1
		 RETURNING entry_count
		 `
	return r.increment(ctx, query, userID)
}

// IncrementDailyQuestions advances the per-day question counter, restarting
// it at 1 when the stored date is not today. Returns the new count.
func (r *PostgresRepository) IncrementDailyQuestions(ctx context.Context, userID string, today time.Time) (int64, error) {
	query :=
		`UPDATE user_quotas SET
			daily_question_count = CASE
				WHEN daily_question_date = $2::date THEN daily_question_count + 1
				ELSE 1
			END,
			daily_question_date = $2::date
		 WHERE user_id = $1
		 RETURNING daily_question_count
		 `
	return r.increment(ctx, query, userID, today)
}

func (r *PostgresRepository) increment(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) StartTrial(ctx context.Context, userID string, start, end time.Time) error {
	query :=
		`UPDATE user_quotas SET subscription_kind = 'trial', trial_start = $2, trial_end = $3
		 WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, userID, start, end)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res, common.ErrorNotFound)
}

// SetPremium switches the user's plan between premium and free.
func (r *PostgresRepository) SetPremium(ctx context.Context, userID string, premium bool) error {
	query :=
		`UPDATE user_quotas SET is_premium = $2,
			subscription_kind = CASE WHEN $2 THEN 'premium' ELSE 'free' END
		 WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, userID, premium)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res, common.ErrorNotFound)
}
