package store

import "errors"

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a conditional update matched no
	// document, i.e. the state the caller required no longer holds.
	ErrConflict = errors.New("conflict: document state changed")
)
