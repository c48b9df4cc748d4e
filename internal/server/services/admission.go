// Package services contains server-side business logic. This file implements
// AdmissionService, which enforces subscription, trial and quota policy
// before work is accepted.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/common"
	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/server/config"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/voicediary/internal/timex"
)

// AdmissionService answers "may this user do X now" questions against the
// user's quota record. A missing quota record never grants access.
type AdmissionService struct {
	db                 *sql.DB
	repomanager        repomanager.RepositoryManager
	freeEntryLimit     int64
	dailyQuestionLimit int64
	now                func() time.Time
}

// NewAdmissionService constructs an AdmissionService using repositories and server config.
func NewAdmissionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AdmissionService {
	return &AdmissionService{
		db:                 db,
		repomanager:        m,
		freeEntryLimit:     cfg.FreeEntryLimit,
		dailyQuestionLimit: cfg.DailyQuestionLimit,
		now:                time.Now,
	}
}

// WithClock replaces the time source; today is always taken in UTC.
func (s *AdmissionService) WithClock(now func() time.Time) *AdmissionService {
	s.now = now
	return s
}

func (s *AdmissionService) today() time.Time {
	return timex.Date(s.now())
}

// quota loads the user's quota; a missing record is reported as (nil, nil).
func (s *AdmissionService) quota(ctx context.Context, userID string) (*models.UserQuota, error) {
	q, err := s.repomanager.Quotas(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading quota: %w", err)
	}
	return q, nil
}

func (s *AdmissionService) canCreate(q *models.UserQuota) bool {
	return q.PremiumAccess(s.now()) || q.EntryCount < s.freeEntryLimit
}

// Quota returns the user's quota record or common.ErrorNotFound.
func (s *AdmissionService) Quota(ctx context.Context, userID string) (*models.UserQuota, error) {
	return s.repomanager.Quotas(s.db).Get(ctx, userID)
}

// CheckPremiumAccess reports whether the user is premium or inside an
// active trial.
func (s *AdmissionService) CheckPremiumAccess(ctx context.Context, userID string) (bool, error) {
	q, err := s.quota(ctx, userID)
	if err != nil || q == nil {
		return false, err
	}
	return q.PremiumAccess(s.now()), nil
}

// CanCreateEntry reports whether the user may create another entry.
// Premium access always may; free users only below the free entry limit.
func (s *AdmissionService) CanCreateEntry(ctx context.Context, userID string) (bool, error) {
	q, err := s.quota(ctx, userID)
	if err != nil || q == nil {
		return false, err
	}
	return s.canCreate(q), nil
}

// IncrementDailyChatQuota advances today's question counter and returns the
// new value. The counter restarts at 1 on a new UTC day. No limit is applied.
func (s *AdmissionService) IncrementDailyChatQuota(ctx context.Context, userID string) (int64, error) {
	return s.repomanager.Quotas(s.db).IncrementDailyQuestions(ctx, userID, s.today())
}

// AskQuestion counts a conversational question and reports whether it is
// within today's allowance. Premium access is never limited, but the counter
// still advances.
func (s *AdmissionService) AskQuestion(ctx context.Context, userID string) (int64, bool, error) {
	premium, err := s.CheckPremiumAccess(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	n, err := s.IncrementDailyChatQuota(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	return n, premium || n <= s.dailyQuestionLimit, nil
}

// TrialDaysLeft returns whole days until the trial end date, never negative.
func (s *AdmissionService) TrialDaysLeft(ctx context.Context, userID string) (int, error) {
	q, err := s.quota(ctx, userID)
	if err != nil || q == nil || q.TrialEnd == nil {
		return 0, err
	}
	days := int(timex.Date(*q.TrialEnd).Sub(s.today()).Hours() / 24)
	return max(days, 0), nil
}

// AdmitEntry runs inside the submission transaction. It locks the user's
// quota row, refuses with common.ErrAdmissionDenied when the user may not
// create an entry, and otherwise counts the entry against the free allowance.
// The returned tier is what the new entry is processed under.
func (s *AdmissionService) AdmitEntry(ctx context.Context, tx dbx.DBTX, userID string) (models.ProcessingTier, error) {
	repo := s.repomanager.Quotas(tx)

	q, err := repo.GetForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: no quota record", common.ErrAdmissionDenied)
		}
		return "", fmt.Errorf("error locking quota: %w", err)
	}

	if q.PremiumAccess(s.now()) {
		return models.TierPremium, nil
	}
	if !s.canCreate(q) {
		return "", fmt.Errorf("%w: free entry limit of %d reached", common.ErrAdmissionDenied, s.freeEntryLimit)
	}
	if _, err := repo.IncrementEntryCount(ctx, userID); err != nil {
		return "", fmt.Errorf("error counting entry: %w", err)
	}
	return models.TierFree, nil
}

// EnsureQuota creates a free quota record for the user if none exists.
func (s *AdmissionService) EnsureQuota(ctx context.Context, userID string) error {
	return s.repomanager.Quotas(s.db).Create(ctx, &models.UserQuota{
		UserID:           userID,
		SubscriptionKind: models.SubscriptionFree,
	})
}

// StartTrial puts the user on a trial lasting d from now.
func (s *AdmissionService) StartTrial(ctx context.Context, userID string, d time.Duration) error {
	start := s.now().UTC()
	return s.repomanager.Quotas(s.db).StartTrial(ctx, userID, start, start.Add(d))
}

func (s *AdmissionService) SetPremium(ctx context.Context, userID string, premium bool) error {
	return s.repomanager.Quotas(s.db).SetPremium(ctx, userID, premium)
}
