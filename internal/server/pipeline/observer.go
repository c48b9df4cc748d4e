package pipeline

import (
	"context"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/logging"
	"github.com/dmitrijs2005/voicediary/internal/server/entrystate"
)

// Stage names the unit of work an outcome or timing belongs to.
type Stage string

const (
	StagePipeline      Stage = "pipeline"
	StageTranscription Stage = "transcription"
	StageExtraction    Stage = "expense_extraction"
)

// Outcome reports how an entry finished. Err is set for failure statuses
// and carries the stage error (common.ErrTranscriptionFailure,
// common.ErrExtractionFailure or the cause of a failed_pipeline).
type Outcome struct {
	EntryID string
	Status  entrystate.Status
	Stage   Stage
	Err     error
}

// Observer receives pipeline events. Implementations must be safe for
// concurrent use; they are called from every worker.
type Observer interface {
	ObserveOutcome(ctx context.Context, o Outcome)
	ObserveStage(ctx context.Context, stage Stage, d time.Duration)
}

// LogObserver writes outcomes to the structured log.
type LogObserver struct {
	log logging.Logger
}

func NewLogObserver(log logging.Logger) *LogObserver {
	return &LogObserver{log: log.With("module", "pipeline")}
}

func (o *LogObserver) ObserveOutcome(ctx context.Context, out Outcome) {
	args := []any{"entry_id", out.EntryID, "status", out.Status, "stage", out.Stage}
	switch out.Status {
	case entrystate.Completed:
		o.log.Info(ctx, "entry processed", args...)
	case entrystate.NoAudio, entrystate.NoTranscript:
		o.log.Warn(ctx, "entry finished without content", args...)
	default:
		o.log.Error(ctx, "entry processing failed", append(args, "error", out.Err)...)
	}
}

func (o *LogObserver) ObserveStage(ctx context.Context, stage Stage, d time.Duration) {
	o.log.Debug(ctx, "stage finished", "stage", stage, "duration", d)
}
