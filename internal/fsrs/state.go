package fsrs

import (
	"encoding"
	"fmt"
	"strconv"
)

// State is the learning phase of a card. The numeric codes are the
// persisted representation and must not be reordered.
type State int

const (
	New        State = iota // Created, never graded.
	Learning                // In the initial learning steps.
	Review                  // In the long-term review cycle.
	Relearning              // Lapsed, relearning.
)

var stateNames = [...]string{New: "New", Learning: "Learning", Review: "Review", Relearning: "Relearning"}

var (
	_ fmt.Stringer             = State(0)
	_ encoding.TextMarshaler   = State(0)
	_ encoding.TextUnmarshaler = (*State)(nil)
)

// IsValid reports whether s is a known phase.
func (s State) IsValid() bool {
	return s >= New && s <= Relearning
}

// String returns the phase name, or "State(n)" for invalid values.
func (s State) String() string {
	if s.IsValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Code returns the persisted numeric code ("0".."3").
func (s State) Code() string {
	return strconv.Itoa(int(s))
}

// ParseStateCode decodes a persisted state code. Empty or unparseable
// input defaults to New, matching how legacy rows are read.
func ParseStateCode(code string) State {
	n, err := strconv.Atoi(code)
	if err != nil {
		return New
	}
	s := State(n)
	if !s.IsValid() {
		return New
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("fsrs: invalid state: %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("fsrs: invalid state: %q", text)
}
