package fsrs

import (
	"encoding"
	"fmt"
)

// Rating is the user's grade for a single review.
type Rating int

const (
	Again Rating = iota + 1 // Forgot.
	Hard                    // Recalled with serious difficulty.
	Good                    // Recalled with some effort.
	Easy                    // Recalled without effort.
)

var ratingNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

var ratingByName = map[string]Rating{
	"Again": Again,
	"Hard":  Hard,
	"Good":  Good,
	"Easy":  Easy,
}

var (
	_ fmt.Stringer             = Rating(0)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// IsValid reports whether r is one of the four grades.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// String returns the grade name, or "Rating(n)" for invalid values.
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// ParseRating accepts either a grade name ("Good") or its numeric code ("3").
func ParseRating(s string) (Rating, error) {
	if r, ok := ratingByName[s]; ok {
		return r, nil
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '4' {
		return Rating(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
