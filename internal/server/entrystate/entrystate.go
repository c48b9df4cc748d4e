// Package entrystate defines the lifecycle of a diary entry: its statuses,
// the legal forward transitions between them, and which statuses are terminal.
package entrystate

import (
	"errors"
	"fmt"
)

// Status is the persisted processing status of an entry.
type Status string

const (
	Created             Status = "created"
	Processing          Status = "processing"
	Transcribing        Status = "transcribing"
	Transcribed         Status = "transcribed"
	NoAudio             Status = "no_audio"
	FailedTranscription Status = "failed_transcription"
	ExtractingExpenses  Status = "extracting_expenses"
	ExpensesExtracted   Status = "expenses_extracted"
	NoTranscript        Status = "notranscript"
	FailedExpenses      Status = "failed_expenses"
	Completed           Status = "completed"
	FailedPipeline      Status = "failed_pipeline"
)

var ErrIllegalTransition = errors.New("illegal status transition")

// transitions lists the forward moves out of each non-terminal status.
// FailedPipeline is reachable from every non-terminal status and is added
// by CanTransition.
var transitions = map[Status][]Status{
	Created:            {Processing},
	Processing:         {Transcribing},
	Transcribing:       {Transcribed, NoAudio, FailedTranscription},
	Transcribed:        {ExtractingExpenses},
	ExtractingExpenses: {ExpensesExtracted, NoTranscript, FailedExpenses},
	ExpensesExtracted:  {Completed},
}

var terminal = map[Status]struct{}{
	NoAudio:             {},
	FailedTranscription: {},
	NoTranscript:        {},
	FailedExpenses:      {},
	Completed:           {},
	FailedPipeline:      {},
}

// All returns every status in lifecycle order.
func All() []Status {
	return []Status{
		Created, Processing, Transcribing, Transcribed, NoAudio, FailedTranscription,
		ExtractingExpenses, ExpensesExtracted, NoTranscript, FailedExpenses, Completed, FailedPipeline,
	}
}

// Parse converts a stored string into a Status.
func Parse(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; ok {
		return st, nil
	}
	if _, ok := terminal[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown entry status %q", s)
}

// IsTerminal reports whether the pipeline takes no further action in s.
func IsTerminal(s Status) bool {
	_, ok := terminal[s]
	return ok
}

// Terminal returns the terminal statuses.
func Terminal() []Status {
	out := make([]Status, 0, len(terminal))
	for _, s := range All() {
		if IsTerminal(s) {
			out = append(out, s)
		}
	}
	return out
}

// CanTransition reports whether moving from -> to is a legal forward step.
func CanTransition(from, to Status) bool {
	if IsTerminal(from) {
		return false
	}
	if to == FailedPipeline {
		_, known := transitions[from]
		return known
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to and returns an ErrIllegalTransition-wrapped
// error when the move is not allowed.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}
