// Package common defines shared sentinel errors used across the intake
// pipeline, its stores and the operator CLI. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Extraction and review errors.
	ErrNothingExtracted  = errors.New("no vaccination records found in document")
	ErrInvalidTransition = errors.New("invalid workflow transition")
	ErrInvalidCandidate  = errors.New("invalid candidate")
	ErrEntryNotFound     = errors.New("review entry not found")
	ErrMissingTarget     = errors.New("no patient selected")

	// Dictation errors.
	ErrCaptureInProgress = errors.New("capture already in progress")

	// Scan upload validation errors.
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image too large")

	// Engine registry errors.
	ErrUnknownEngine = errors.New("unknown engine")

	// Auth errors (invalid or malformed operator token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
