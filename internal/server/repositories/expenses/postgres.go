// Package expenses provides the PostgreSQL-backed repository for expenses
// detected in diary entries.
package expenses

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Expense) error {
	query :=
		`INSERT INTO expenses (id, entry_id, amount, currency, category, payment_method,
			merchant, detected_text, confidence_score, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		e.ID, e.EntryID, e.Amount, e.Currency, e.Category, e.PaymentMethod,
		e.Merchant, e.DetectedText, e.ConfidenceScore, e.Notes,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByEntry returns the entry's expenses in insertion order.
func (r *PostgresRepository) ListByEntry(ctx context.Context, entryID string) ([]*models.Expense, error) {
	query := `SELECT id, entry_id, amount, currency, category, payment_method,
			merchant, detected_text, confidence_score, notes, created_at
		FROM expenses
		WHERE entry_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []*models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(
			&e.ID, &e.EntryID, &e.Amount, &e.Currency, &e.Category, &e.PaymentMethod,
			&e.Merchant, &e.DetectedText, &e.ConfidenceScore, &e.Notes, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
