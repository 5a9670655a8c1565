package fsrs

import "errors"

// Sentinel errors for the fsrs package. Check with errors.Is.
var (
	// ErrInvalidRating is returned when a rating is outside Again..Easy.
	ErrInvalidRating = errors.New("fsrs: invalid rating")

	// ErrUninitializedState is returned when a memory state is missing
	// required fields, i.e. the card never went through the initializer.
	ErrUninitializedState = errors.New("fsrs: uninitialized memory state")

	// ErrInvalidWeights is returned when a weight vector is out of bounds.
	ErrInvalidWeights = errors.New("fsrs: weights out of bounds")
)
