// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/voicediary/internal/server/entrystate"
	"github.com/shopspring/decimal"
)

// EntryKind tells how the user submitted an entry.
type EntryKind string

const (
	EntryKindText  EntryKind = "text"
	EntryKindVoice EntryKind = "voice"
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	return k == EntryKindText || k == EntryKindVoice
}

// ProcessingTier is captured from the owner's subscription when the entry is
// created and never changes afterwards.
type ProcessingTier string

const (
	TierFree    ProcessingTier = "free"
	TierPremium ProcessingTier = "premium"
)

// Entry is one diary submission moving through the processing pipeline.
type Entry struct {
	ID     string
	UserID string
	Kind   EntryKind

	// AudioRef is the object-storage key of the recording; empty when absent.
	AudioRef string
	// Transcript is the inline text of a text entry, or the transcription
	// result of a voice entry; empty until known.
	Transcript string

	Tier         ProcessingTier
	Status       entrystate.Status
	TotalExpense decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAudio reports whether the entry references a recording.
func (e *Entry) HasAudio() bool {
	return e.AudioRef != ""
}
