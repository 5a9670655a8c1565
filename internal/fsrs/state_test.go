package fsrs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateCodeRoundTrip(t *testing.T) {
	for _, s := range []State{New, Learning, Review, Relearning} {
		require.Equal(t, s, ParseStateCode(s.Code()))
	}
}

func TestParseStateCodeDefaultsToNew(t *testing.T) {
	require.Equal(t, New, ParseStateCode(""))
	require.Equal(t, New, ParseStateCode("banana"))
	require.Equal(t, New, ParseStateCode("9"))
}

func TestStateText(t *testing.T) {
	text, err := Review.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "Review", string(text))

	var s State
	require.NoError(t, s.UnmarshalText([]byte("Relearning")))
	require.Equal(t, Relearning, s)

	require.Error(t, s.UnmarshalText([]byte("nope")))
}

func TestRatingParsing(t *testing.T) {
	for name, want := range map[string]Rating{"Again": Again, "Hard": Hard, "Good": Good, "Easy": Easy, "3": Good} {
		got, err := ParseRating(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseRating("Meh")
	require.ErrorIs(t, err, ErrInvalidRating)

	require.False(t, Rating(0).IsValid())
	require.False(t, Rating(5).IsValid())
}
