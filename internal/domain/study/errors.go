package study

import "errors"

var (
	// ErrCardNotFound is returned when the reviewed card doesn't exist
	// or belongs to another user.
	ErrCardNotFound = errors.New("card not found")

	// ErrConflict is returned when the card changed between read and
	// write; the caller should re-fetch and retry.
	ErrConflict = errors.New("card was modified concurrently")

	// ErrInvalidRating is returned for a grade outside Again..Easy.
	ErrInvalidRating = errors.New("invalid rating")
)
