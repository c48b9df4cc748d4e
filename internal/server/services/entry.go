package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/voicediary/internal/common"
	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/logging"
	"github.com/dmitrijs2005/voicediary/internal/server/entrystate"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Page size bounds for List.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SubmitRequest describes a new diary entry. Text carries the content of a
// text entry; AudioRef, AudioName and AudioSize describe an uploaded
// recording for a voice entry.
type SubmitRequest struct {
	UserID    string
	Kind      models.EntryKind
	AudioRef  string
	AudioName string
	AudioSize int64
	Text      string
}

// Enqueuer hands a created entry to asynchronous processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, entryID string) error
}

// AudioStore reserves storage for recordings.
type AudioStore interface {
	PresignPut(ctx context.Context, userID, ext string) (key string, url string, err error)
}

// EntryService is the submission boundary: it admits, validates and stores
// new entries, hands them to the pipeline, and serves the owner's reads.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	admission   *AdmissionService
	queue       Enqueuer
	audio       AudioStore
	log         logging.Logger
	newID       func() string
}

// NewEntryService constructs an EntryService.
func NewEntryService(db *sql.DB, m repomanager.RepositoryManager, admission *AdmissionService,
	queue Enqueuer, audio AudioStore, log logging.Logger) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: m,
		admission:   admission,
		queue:       queue,
		audio:       audio,
		log:         log.With("module", "entries"),
		newID:       uuid.NewString,
	}
}

// Submit creates an entry in status created and enqueues it for processing.
// Admission and validation failures are returned before anything is stored.
// A failed enqueue is logged but not returned: the entry is committed and is
// picked up again by crash recovery.
func (s *EntryService) Submit(ctx context.Context, req SubmitRequest) (*models.Entry, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	var entry *models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tier, err := s.admission.AdmitEntry(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if req.Kind == models.EntryKindVoice && req.AudioRef != "" {
			if err := checkAudioSize(req.AudioSize, tier); err != nil {
				return err
			}
		}

		entry = &models.Entry{
			ID:           s.newID(),
			UserID:       req.UserID,
			Kind:         req.Kind,
			Tier:         tier,
			Status:       entrystate.Created,
			TotalExpense: decimal.Zero,
		}
		switch req.Kind {
		case models.EntryKindText:
			entry.Transcript = req.Text
		case models.EntryKindVoice:
			entry.AudioRef = req.AudioRef
		}
		return s.repomanager.Entries(tx).Create(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, common.ErrAdmissionDenied) || errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating entry: %w", err)
	}

	s.log.Info(ctx, "entry submitted", "entry_id", entry.ID, "user_id", entry.UserID, "kind", entry.Kind, "tier", entry.Tier)

	if err := s.queue.Enqueue(ctx, entry.ID); err != nil {
		s.log.Warn(ctx, "entry not enqueued, left for recovery", "entry_id", entry.ID, "error", err)
	}
	return entry, nil
}

// Get returns the user's entry. Entries of other users are reported as not found.
func (s *EntryService) Get(ctx context.Context, userID, entryID string) (*models.Entry, error) {
	e, err := s.repomanager.Entries(s.db).GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

// List returns a page of the user's entries, newest first.
func (s *EntryService) List(ctx context.Context, userID string, limit, offset int) ([]*models.Entry, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)
	return s.repomanager.Entries(s.db).ListByUser(ctx, userID, limit, offset)
}

// Delete removes the user's entry and, through the schema, its expenses.
func (s *EntryService) Delete(ctx context.Context, userID, entryID string) error {
	if err := s.repomanager.Entries(s.db).Delete(ctx, entryID, userID); err != nil {
		return err
	}
	s.log.Info(ctx, "entry deleted", "entry_id", entryID, "user_id", userID)
	return nil
}

// Expenses lists the expenses detected in the user's entry.
func (s *EntryService) Expenses(ctx context.Context, userID, entryID string) ([]*models.Expense, error) {
	if _, err := s.Get(ctx, userID, entryID); err != nil {
		return nil, err
	}
	return s.repomanager.Expenses(s.db).ListByEntry(ctx, entryID)
}

// RequestAudioUpload validates the file name and returns a storage key and
// upload URL. The key is later passed back as the entry's audio reference.
func (s *EntryService) RequestAudioUpload(ctx context.Context, userID, fileName string) (string, string, error) {
	ext, err := AudioExtension(fileName)
	if err != nil {
		return "", "", err
	}
	key, url, err := s.audio.PresignPut(ctx, userID, ext)
	if err != nil {
		return "", "", fmt.Errorf("error presigning upload: %w", err)
	}
	return key, url, nil
}
