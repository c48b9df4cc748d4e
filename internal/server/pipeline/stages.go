package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/voicediary/internal/common"
	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/server/entrystate"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/shopspring/decimal"
)

// transcribe resolves the entry's transcript. Text entries already carry it.
// Transcriber errors are final for the entry: there is no retry.
func (p *Pipeline) transcribe(ctx context.Context, e *models.Entry) (stepResult, error) {
	res := stepResult{stage: StageTranscription}

	var text string
	switch {
	case e.Kind == models.EntryKindText:
		text = e.Transcript
	case !e.HasAudio():
		res.status = entrystate.NoAudio
		return res, p.checkpoint(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			return p.repomanager.Entries(tx).UpdateStatus(ctx, e.ID, entrystate.Transcribing, entrystate.NoAudio)
		})
	default:
		var err error
		text, err = p.transcriber.Transcribe(ctx, e.AudioRef, p.language)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.status = entrystate.FailedTranscription
			res.err = fmt.Errorf("%w: %w", common.ErrTranscriptionFailure, err)
			return res, p.checkpoint(ctx, func(ctx context.Context, tx dbx.DBTX) error {
				return p.repomanager.Entries(tx).UpdateStatus(ctx, e.ID, entrystate.Transcribing, entrystate.FailedTranscription)
			})
		}
	}

	res.status = entrystate.Transcribed
	return res, p.checkpoint(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return p.repomanager.Entries(tx).SetTranscript(ctx, e.ID, text, entrystate.Transcribing, entrystate.Transcribed)
	})
}

// extractExpenses stores one expense per detected amount and the entry total
// in a single transaction, so a failure leaves no expenses behind.
func (p *Pipeline) extractExpenses(ctx context.Context, e *models.Entry) (stepResult, error) {
	res := stepResult{stage: StageExtraction}

	if strings.TrimSpace(e.Transcript) == "" {
		res.status = entrystate.NoTranscript
		return res, p.checkpoint(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			return p.repomanager.Entries(tx).UpdateStatus(ctx, e.ID, entrystate.ExtractingExpenses, entrystate.NoTranscript)
		})
	}

	matches, err := p.extract(e.Transcript)
	if err == nil {
		err = p.checkpoint(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			total := decimal.Zero
			for _, m := range matches {
				x := &models.Expense{
					ID:              p.newID(),
					EntryID:         e.ID,
					Amount:          m.Amount,
					Currency:        common.DefaultCurrency,
					Category:        models.CategoryOther,
					PaymentMethod:   models.PaymentUPI,
					DetectedText:    m.Context,
					ConfidenceScore: models.BaselineConfidence,
				}
				if err := p.repomanager.Expenses(tx).Create(ctx, x); err != nil {
					return fmt.Errorf("save expense: %w", err)
				}
				total = total.Add(m.Amount)
			}
			return p.repomanager.Entries(tx).SetTotalExpense(ctx, e.ID, total, entrystate.ExtractingExpenses, entrystate.ExpensesExtracted)
		})
		switch {
		case err == nil:
			res.status = entrystate.ExpensesExtracted
			return res, nil
		case errors.Is(err, common.ErrStatusConflict), errors.Is(err, common.ErrorNotFound), ctx.Err() != nil:
			return res, err
		}
	}

	res.status = entrystate.FailedExpenses
	res.err = fmt.Errorf("%w: %w", common.ErrExtractionFailure, err)
	return res, p.checkpoint(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return p.repomanager.Entries(tx).UpdateStatus(ctx, e.ID, entrystate.ExtractingExpenses, entrystate.FailedExpenses)
	})
}
