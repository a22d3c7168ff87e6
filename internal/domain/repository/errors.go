package repository

import "errors"

var (
	// ErrNotFound is returned when the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional write lost against a
	// concurrent writer. Callers may retry the whole operation; log
	// mutations are idempotent under retry.
	ErrConflict = errors.New("store conflict")
)
