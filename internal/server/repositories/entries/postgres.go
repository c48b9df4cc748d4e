// Package entries provides the PostgreSQL-backed repository for diary entries
// and their pipeline status.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/voicediary/internal/common"
	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/server/entrystate"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/shopspring/decimal"
)

const entryColumns = `id, user_id, kind, audio_ref, transcript, tier, status, total_expense, created_at, updated_at`

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new entry and fills its timestamps from the database.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) error {
	query :=
		`INSERT INTO entries (id, user_id, kind, audio_ref, transcript, tier, status, total_expense)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.Kind, entry.AudioRef, entry.Transcript,
		entry.Tier, entry.Status, entry.TotalExpense,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var e models.Entry
	if err := s.Scan(
		&e.ID, &e.UserID, &e.Kind, &e.AudioRef, &e.Transcript,
		&e.Tier, &e.Status, &e.TotalExpense, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID returns the entry or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// ListByUser returns a page of the user's entries, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the user's entry; its expenses go with it (FK cascade).
func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res, common.ErrorNotFound)
}

// UpdateStatus moves the entry from one status to another. The update only
// applies while the stored status still equals from.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to entrystate.Status) error {
	if err := entrystate.Transition(from, to); err != nil {
		return err
	}
	query :=
		`UPDATE entries SET status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return r.checkSwap(ctx, id, res)
}

// SetTranscript stores the transcript together with the status move.
func (r *PostgresRepository) SetTranscript(ctx context.Context, id, transcript string, from, to entrystate.Status) error {
	if err := entrystate.Transition(from, to); err != nil {
		return err
	}
	query :=
		`UPDATE entries SET transcript = $4, status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, id, from, to, transcript)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return r.checkSwap(ctx, id, res)
}

// SetTotalExpense stores the expense total together with the status move.
func (r *PostgresRepository) SetTotalExpense(ctx context.Context, id string, total decimal.Decimal, from, to entrystate.Status) error {
	if err := entrystate.Transition(from, to); err != nil {
		return err
	}
	query :=
		`UPDATE entries SET total_expense = $4, status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, id, from, to, total)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return r.checkSwap(ctx, id, res)
}

// checkSwap tells a deleted entry (ErrorNotFound) apart from one whose status
// moved underneath us (ErrStatusConflict).
func (r *PostgresRepository) checkSwap(ctx context.Context, id string, res sql.Result) error {
	err := dbx.ExpectOneRow(res, common.ErrStatusConflict)
	if !errors.Is(err, common.ErrStatusConflict) {
		return err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM entries WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return common.ErrorNotFound
	}
	return common.ErrStatusConflict
}

// SelectUnfinished returns ids of entries not yet in a terminal status,
// oldest first.
func (r *PostgresRepository) SelectUnfinished(ctx context.Context) ([]string, error) {
	terminal := entrystate.Terminal()
	args := make([]any, len(terminal))
	placeholders := ""
	for i, s := range terminal {
		args[i] = s
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
	}
	query := `SELECT id FROM entries WHERE status NOT IN (` + placeholders + `) ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
