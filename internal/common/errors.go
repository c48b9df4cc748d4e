// Package common defines shared constants and sentinel errors used across
// the diary server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrStatusConflict = errors.New("status conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Admission and request validation errors. Both are returned
	// synchronously, before an entry is created.
	ErrAdmissionDenied = errors.New("admission denied")
	ErrValidation      = errors.New("validation error")

	// Pipeline stage failures. They end up in the entry status and in
	// pipeline outcomes, never in the submitter's response.
	ErrTranscriptionFailure = errors.New("transcription failure")
	ErrExtractionFailure    = errors.New("extraction failure")
)
