package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotReady is returned when an operation requires the link-graph
	// store before it has been initialized.
	ErrNotReady = errors.New("store not ready")
)
