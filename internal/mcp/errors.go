package mcp

import (
	"errors"
	"fmt"

	"github.com/avesk/recollect/internal/domain/card"
	"github.com/avesk/recollect/internal/domain/playlist"
	"github.com/avesk/recollect/internal/domain/source"
	"github.com/avesk/recollect/internal/domain/study"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unmapped errors
// return nil and pass through as-is.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, card.ErrNotFound), errors.Is(err, study.ErrCardNotFound):
		return &APIError{Code: "CARD_NOT_FOUND", Message: "card not found", RecoveryHint: "Check the card ID"}
	case errors.Is(err, study.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "card was modified concurrently", RecoveryHint: "Fetch the card again and retry"}
	case errors.Is(err, study.ErrInvalidRating):
		return &APIError{Code: "INVALID_RATING", Message: "rating must be again, hard, good, or easy"}
	case errors.Is(err, card.ErrInvalidInput):
		return &APIError{Code: "INVALID_CARD", Message: err.Error()}
	case errors.Is(err, playlist.ErrNotFound):
		return &APIError{Code: "PLAYLIST_NOT_FOUND", Message: "playlist not found", RecoveryHint: "Call list_playlists to see available playlists"}
	case errors.Is(err, playlist.ErrDuplicateName):
		return &APIError{Code: "DUPLICATE_PLAYLIST", Message: "playlist name already in use"}
	case errors.Is(err, playlist.ErrInvalidInput):
		return &APIError{Code: "INVALID_PLAYLIST", Message: err.Error()}
	case errors.Is(err, source.ErrDuplicatePath):
		return &APIError{Code: "DUPLICATE_SOURCE", Message: "source path already registered"}
	case errors.Is(err, source.ErrInvalidInput):
		return &APIError{Code: "INVALID_SOURCE", Message: err.Error()}
	default:
		return nil
	}
}

// wrapError converts a domain error into the error returned to the
// MCP client.
func wrapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
