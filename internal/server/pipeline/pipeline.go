// Package pipeline drives diary entries from created to a terminal status.
//
// The pipeline is a persisted state machine: every step reads the entry,
// does the work for its current status, and commits the result together
// with the next status in one transaction. A crash between steps leaves the
// entry in a resumable status, and Process picks up from there.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/common"
	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/logging"
	"github.com/dmitrijs2005/voicediary/internal/server/entrystate"
	"github.com/dmitrijs2005/voicediary/internal/server/extractor"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Transcriber turns a stored recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioRef, language string) (string, error)
}

// Pipeline runs the transcription and expense extraction stages for one
// entry at a time. It is safe for concurrent use on different entries.
type Pipeline struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	transcriber Transcriber
	extract     extractor.Func
	language    string
	observers   []Observer
	log         logging.Logger
	newID       func() string
	now         func() time.Time
}

// New constructs a Pipeline. language is passed to the transcriber.
func New(db *sql.DB, m repomanager.RepositoryManager, t Transcriber, language string,
	log logging.Logger, observers ...Observer) *Pipeline {
	return &Pipeline{
		db:          db,
		repomanager: m,
		transcriber: t,
		extract:     extractor.Extract,
		language:    language,
		observers:   observers,
		log:         log.With("module", "pipeline"),
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// stepResult is the status a step wrote, and the stage error it recorded
// in that status, if any.
type stepResult struct {
	status entrystate.Status
	stage  Stage
	err    error
}

// Process drives the entry until it reaches a terminal status and publishes
// the outcome. Stage failures end in their failure status and are not
// returned. An entry deleted mid-way stops processing quietly. Process
// returns an error only when it could not record a terminal status, or when
// ctx ends; the entry is then left for recovery.
func (p *Pipeline) Process(ctx context.Context, entryID string) error {
	for {
		entry, err := p.repomanager.Entries(p.db).GetByID(ctx, entryID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				p.log.Warn(ctx, "entry deleted, stopping", "entry_id", entryID)
				return nil
			}
			return fmt.Errorf("load entry %s: %w", entryID, err)
		}
		if entrystate.IsTerminal(entry.Status) {
			return nil
		}

		res, err := p.step(ctx, entry)
		switch {
		case err == nil:
		case errors.Is(err, common.ErrStatusConflict):
			p.log.Debug(ctx, "status changed underneath, reloading", "entry_id", entryID, "status", entry.Status)
			continue
		case errors.Is(err, common.ErrorNotFound):
			p.log.Warn(ctx, "entry deleted, stopping", "entry_id", entryID)
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			return p.failPipeline(ctx, entry, res.stage, err)
		}

		p.log.Debug(ctx, "checkpoint", "entry_id", entryID, "from", entry.Status, "to", res.status)
		if entrystate.IsTerminal(res.status) {
			p.publish(ctx, Outcome{EntryID: entryID, Status: res.status, Stage: res.stage, Err: res.err})
			return nil
		}
	}
}

// step performs the work due for the entry's current status.
func (p *Pipeline) step(ctx context.Context, e *models.Entry) (stepResult, error) {
	switch e.Status {
	case entrystate.Created:
		return p.advance(ctx, e, entrystate.Processing, StagePipeline)
	case entrystate.Processing:
		return p.advance(ctx, e, entrystate.Transcribing, StageTranscription)
	case entrystate.Transcribing:
		return p.timed(ctx, StageTranscription, func() (stepResult, error) { return p.transcribe(ctx, e) })
	case entrystate.Transcribed:
		return p.advance(ctx, e, entrystate.ExtractingExpenses, StageExtraction)
	case entrystate.ExtractingExpenses:
		return p.timed(ctx, StageExtraction, func() (stepResult, error) { return p.extractExpenses(ctx, e) })
	case entrystate.ExpensesExtracted:
		return p.advance(ctx, e, entrystate.Completed, StageExtraction)
	}
	return stepResult{stage: StagePipeline}, fmt.Errorf("no step from status %q", e.Status)
}

func (p *Pipeline) advance(ctx context.Context, e *models.Entry, to entrystate.Status, stage Stage) (stepResult, error) {
	err := p.checkpoint(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return p.repomanager.Entries(tx).UpdateStatus(ctx, e.ID, e.Status, to)
	})
	return stepResult{status: to, stage: stage}, err
}

// checkpoint commits one step: the step's output and its status move.
func (p *Pipeline) checkpoint(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, p.db, nil, fn)
}

func (p *Pipeline) timed(ctx context.Context, stage Stage, fn func() (stepResult, error)) (stepResult, error) {
	start := p.now()
	res, err := fn()
	d := p.now().Sub(start)
	for _, o := range p.observers {
		o.ObserveStage(ctx, stage, d)
	}
	return res, err
}

// failPipeline records failed_pipeline for errors no stage owns.
func (p *Pipeline) failPipeline(ctx context.Context, e *models.Entry, stage Stage, cause error) error {
	if stage == "" {
		stage = StagePipeline
	}
	p.log.Error(ctx, "pipeline error", "entry_id", e.ID, "status", e.Status, "stage", stage, "error", cause)

	err := p.checkpoint(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return p.repomanager.Entries(tx).UpdateStatus(ctx, e.ID, e.Status, entrystate.FailedPipeline)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			p.log.Warn(ctx, "entry deleted, stopping", "entry_id", e.ID)
			return nil
		}
		return fmt.Errorf("record failed_pipeline for %s: %w (cause: %w)", e.ID, err, cause)
	}

	p.publish(ctx, Outcome{EntryID: e.ID, Status: entrystate.FailedPipeline, Stage: stage, Err: cause})
	return nil
}

func (p *Pipeline) publish(ctx context.Context, o Outcome) {
	for _, obs := range p.observers {
		obs.ObserveOutcome(ctx, o)
	}
}
