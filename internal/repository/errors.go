// Package repository holds the sentinel errors shared by every storage
// implementation. The persistence contracts themselves live in the
// domain packages that consume them, so this package stays import-free
// of the domain layer.
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	// or is not owned by the requesting user
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an optimistic concurrency check fails
	ErrConflict = errors.New("conflict: entity was modified concurrently")

	// ErrDuplicate is returned when a uniqueness constraint fails
	ErrDuplicate = errors.New("duplicate entity")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
