package apperrors

/**
 * Domain error taxonomy shared by the HTTP controllers and the socket
 * handlers. Every error crossing a transport boundary goes through
 * Serialize, so unexpected failures never leak their internals.
 */

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindIllegalTransition
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindIllegalTransition:
		return "illegal_transition"
	case KindValidation:
		return "validation"
	default:
		return "unexpected"
	}
}

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind, and on code when the target carries one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithMessage returns a copy of a sentinel carrying a more specific message
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

var (
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Code: "session_invalid", Message: "Session expired or invalid"}
	ErrForbidden           = &Error{Kind: KindForbidden, Code: "forbidden", Message: "Insufficient permissions"}
	ErrRoomFull            = &Error{Kind: KindConflict, Code: "room_full", Message: "Room is full"}
	ErrPlayerAlreadyInRoom = &Error{Kind: KindConflict, Code: "player_in_room", Message: "Player already in room"}
	ErrTeamAlreadyInRoom   = &Error{Kind: KindConflict, Code: "team_in_room", Message: "Team already in room"}
	ErrAlreadyInTeam       = &Error{Kind: KindConflict, Code: "already_in_team", Message: "User already in team"}
	ErrNotInRoom           = &Error{Kind: KindConflict, Code: "not_in_room", Message: "Player is not in the room"}
	ErrRateLimited         = &Error{Kind: KindConflict, Code: "rate_limited", Message: "Too many messages"}
	ErrRoomNotWaiting      = &Error{Kind: KindIllegalTransition, Code: "room_not_waiting", Message: "Room is not waiting"}
	ErrGameNotPlaying      = &Error{Kind: KindIllegalTransition, Code: "game_not_playing", Message: "Game is not playing"}
	ErrNotEnoughPlayers    = &Error{Kind: KindIllegalTransition, Code: "not_enough_players", Message: "Not enough players to start"}
	ErrNotEnoughTeams      = &Error{Kind: KindIllegalTransition, Code: "not_enough_teams", Message: "Not enough teams to start the game"}
	ErrNoPlayers           = &Error{Kind: KindIllegalTransition, Code: "no_players", Message: "Not enough players to start the game"}

	// Kind-only targets for errors.Is
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrIllegalTransition = &Error{Kind: KindIllegalTransition}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUnexpected        = &Error{Kind: KindUnexpected}
)

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Message: fmt.Sprintf("%s not found", entity)}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "forbidden", Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Code: "conflict", Message: message}
}

func IllegalTransition(from, to string) *Error {
	return &Error{
		Kind:    KindIllegalTransition,
		Code:    "illegal_transition",
		Message: fmt.Sprintf("Cannot transition from %s to %s", from, to),
	}
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: "validation", Message: message, Fields: fields}
}

func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Code: "unexpected", Message: "Internal server error", Err: err}
}

// KindOf reports the kind of err. Errors outside the taxonomy are unexpected.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

func StatusCode(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict, KindIllegalTransition:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorPayload is the body sent to HTTP and socket clients
type ErrorPayload struct {
	StatusCode int          `json:"status_code"`
	Message    string       `json:"message"`
	Fields     []FieldError `json:"fields,omitempty"`
	Timestamp  string       `json:"timestamp"`
}

func Serialize(err error) ErrorPayload {
	payload := ErrorPayload{
		StatusCode: StatusCode(err),
		Message:    "Internal server error",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindUnexpected {
		payload.Message = appErr.Message
		payload.Fields = appErr.Fields
	}
	return payload
}
