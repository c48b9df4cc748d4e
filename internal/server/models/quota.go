package models

import "time"

// SubscriptionKind is the user's plan.
type SubscriptionKind string

const (
	SubscriptionFree    SubscriptionKind = "free"
	SubscriptionTrial   SubscriptionKind = "trial"
	SubscriptionPremium SubscriptionKind = "premium"
)

// UserQuota holds per-user subscription state and usage counters.
type UserQuota struct {
	UserID           string
	IsPremium        bool
	SubscriptionKind SubscriptionKind
	TrialStart       *time.Time
	TrialEnd         *time.Time

	// EntryCount only grows for entries created without premium access.
	EntryCount int64

	DailyQuestionCount int64
	DailyQuestionDate  *time.Time
}

// TrialActive reports whether the user is inside a running trial at now.
func (q *UserQuota) TrialActive(now time.Time) bool {
	return q.SubscriptionKind == SubscriptionTrial && q.TrialEnd != nil && !q.TrialEnd.Before(now)
}

// PremiumAccess reports whether the user currently bypasses free limits.
func (q *UserQuota) PremiumAccess(now time.Time) bool {
	return q.IsPremium || q.TrialActive(now)
}
