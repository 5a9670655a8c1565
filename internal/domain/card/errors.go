package card

import "errors"

var (
	// ErrNotFound is returned when a card doesn't exist or belongs to
	// another user.
	ErrNotFound = errors.New("card not found")

	// ErrInvalidInput is returned when card content fails validation.
	ErrInvalidInput = errors.New("invalid card input")
)
