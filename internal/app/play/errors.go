package play

import (
	"errors"
	"net/http"

	"dilemma-lab/internal/export"
	"dilemma-lab/internal/game"
	"dilemma-lab/internal/session"
)

var ErrInvalidJSON = errors.New("invalid_json")

// MapError translates service errors to an HTTP status and a wire code.
// Every transport reports errors through it.
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidJSON):
		return http.StatusBadRequest, "invalid_json"
	case errors.Is(err, game.ErrInvalidConfig):
		return http.StatusBadRequest, "invalid_config"
	case errors.Is(err, game.ErrUnknownStrategy):
		return http.StatusBadRequest, "unknown_strategy"
	case errors.Is(err, game.ErrInvalidMatrix):
		return http.StatusBadRequest, "invalid_matrix"
	case errors.Is(err, game.ErrInvalidAction):
		return http.StatusBadRequest, "invalid_action"
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, session.ErrDuplicateSession):
		return http.StatusConflict, "duplicate_session"
	case errors.Is(err, game.ErrSessionTerminated):
		return http.StatusConflict, "session_terminated"
	case errors.Is(err, export.ErrRecordNotFound):
		return http.StatusNotFound, "record_not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
