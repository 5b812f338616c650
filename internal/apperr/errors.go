// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAlreadyExists  = errors.New("already exists")
	ErrInvalidContent = errors.New("invalid content")

	// ErrNoProject is returned when a save is attempted before a project
	// is selected.
	ErrNoProject = errors.New("no project selected")
	// ErrSaveInFlight is returned for edits and saves issued while a save
	// is still running.
	ErrSaveInFlight = errors.New("save in progress")
)
