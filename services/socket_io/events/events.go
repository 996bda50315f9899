package events

/**
 * Server -> client events. Every event has exactly one payload struct, and
 * the set is closed: only types in this package can implement Event.
 */

import (
	"Wordrush/models"
	"Wordrush/utils/apperrors"
)

type Name string

const (
	RoomCreated Name = "room:created"
	RoomJoined  Name = "room:joined"
	RoomLeft    Name = "room:left"
	RoomUpdated Name = "room:updated"
	RoomDeleted Name = "room:deleted"
	RoomStarted Name = "room:started"
	RoomEnded   Name = "room:ended"
	RoomError   Name = "room:error"

	TeamCreated Name = "team:created"
	TeamJoined  Name = "team:joined"
	TeamLeft    Name = "team:left"
	TeamDeleted Name = "team:deleted"
	TeamMessage Name = "team:message"
	TeamHistory Name = "team:history"
	TeamError   Name = "team:error"

	GameStarted      Name = "game:started"
	GameEnded        Name = "game:ended"
	GamePaused       Name = "game:paused"
	GameResumed      Name = "game:resumed"
	GameRoundStarted Name = "game:round-started"
	GameTurnStarted  Name = "game:turn-started"
	GameWordGuessed  Name = "game:word-guessed"
	GameWordSkipped  Name = "game:word-skipped"
	GameScoreUpdated Name = "game:score-updated"
	GameError        Name = "game:error"

	Error Name = "error"
)

// Event is implemented by the payload structs below
type Event interface {
	EventName() Name
	sealed()
}

type RoomCreatedPayload struct {
	Room models.Room `json:"room"`
}

type RoomJoinedPayload struct {
	Room     models.Room `json:"room"`
	PlayerID string      `json:"player_id"`
}

type RoomLeftPayload struct {
	RoomID   string       `json:"room_id"`
	PlayerID string       `json:"player_id"`
	Room     *models.Room `json:"room,omitempty"`
}

type RoomUpdatedPayload struct {
	Room models.Room `json:"room"`
}

type RoomDeletedPayload struct {
	RoomID string `json:"room_id"`
}

type RoomStartedPayload struct {
	Room   models.Room `json:"room"`
	GameID string      `json:"game_id"`
}

type RoomEndedPayload struct {
	Room models.Room `json:"room"`
}

type TeamCreatedPayload struct {
	Team models.Team `json:"team"`
}

type TeamJoinedPayload struct {
	Team   models.Team `json:"team"`
	UserID string      `json:"user_id"`
}

type TeamLeftPayload struct {
	TeamID string       `json:"team_id"`
	UserID string       `json:"user_id"`
	Team   *models.Team `json:"team,omitempty"`
}

type TeamDeletedPayload struct {
	TeamID string `json:"team_id"`
	RoomID string `json:"room_id,omitempty"`
}

type TeamMessagePayload struct {
	TeamID  string             `json:"team_id"`
	RoomID  string             `json:"room_id,omitempty"`
	Message models.ChatMessage `json:"message"`
}

type TeamHistoryPayload struct {
	TeamID   string               `json:"team_id"`
	RoomID   string               `json:"room_id,omitempty"`
	Messages []models.ChatMessage `json:"messages"`
}

type GameStartedPayload struct {
	Game models.Game `json:"game"`
}

type GameEndedPayload struct {
	Game    models.Game `json:"game"`
	Winners []string    `json:"winners"`
}

type GamePausedPayload struct {
	GameID string `json:"game_id"`
}

type GameResumedPayload struct {
	GameID string `json:"game_id"`
}

type GameRoundStartedPayload struct {
	GameID string `json:"game_id"`
	Round  int    `json:"round"`
}

type GameTurnStartedPayload struct {
	GameID   string `json:"game_id"`
	Turn     int    `json:"turn"`
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
}

type GameWordGuessedPayload struct {
	GameID string `json:"game_id"`
	WordID string `json:"word_id"`
	TeamID string `json:"team_id"`
	Score  int    `json:"score"`
}

type GameWordSkippedPayload struct {
	GameID string `json:"game_id"`
	WordID string `json:"word_id"`
}

type GameScoreUpdatedPayload struct {
	Score models.Score `json:"score"`
}

// ErrorPayload is sent only to the caller whose action failed. Its name
// depends on the domain the action belongs to.
type ErrorPayload struct {
	Name Name `json:"-"`
	apperrors.ErrorPayload
}

func (RoomCreatedPayload) EventName() Name      { return RoomCreated }
func (RoomJoinedPayload) EventName() Name       { return RoomJoined }
func (RoomLeftPayload) EventName() Name         { return RoomLeft }
func (RoomUpdatedPayload) EventName() Name      { return RoomUpdated }
func (RoomDeletedPayload) EventName() Name      { return RoomDeleted }
func (RoomStartedPayload) EventName() Name      { return RoomStarted }
func (RoomEndedPayload) EventName() Name        { return RoomEnded }
func (TeamCreatedPayload) EventName() Name      { return TeamCreated }
func (TeamJoinedPayload) EventName() Name       { return TeamJoined }
func (TeamLeftPayload) EventName() Name         { return TeamLeft }
func (TeamDeletedPayload) EventName() Name      { return TeamDeleted }
func (TeamMessagePayload) EventName() Name      { return TeamMessage }
func (TeamHistoryPayload) EventName() Name      { return TeamHistory }
func (GameStartedPayload) EventName() Name      { return GameStarted }
func (GameEndedPayload) EventName() Name        { return GameEnded }
func (GamePausedPayload) EventName() Name       { return GamePaused }
func (GameResumedPayload) EventName() Name      { return GameResumed }
func (GameRoundStartedPayload) EventName() Name { return GameRoundStarted }
func (GameTurnStartedPayload) EventName() Name  { return GameTurnStarted }
func (GameWordGuessedPayload) EventName() Name  { return GameWordGuessed }
func (GameWordSkippedPayload) EventName() Name  { return GameWordSkipped }
func (GameScoreUpdatedPayload) EventName() Name { return GameScoreUpdated }

func (e ErrorPayload) EventName() Name {
	if e.Name == "" {
		return Error
	}
	return e.Name
}

func (RoomCreatedPayload) sealed()      {}
func (RoomJoinedPayload) sealed()       {}
func (RoomLeftPayload) sealed()         {}
func (RoomUpdatedPayload) sealed()      {}
func (RoomDeletedPayload) sealed()      {}
func (RoomStartedPayload) sealed()      {}
func (RoomEndedPayload) sealed()        {}
func (TeamCreatedPayload) sealed()      {}
func (TeamJoinedPayload) sealed()       {}
func (TeamLeftPayload) sealed()         {}
func (TeamDeletedPayload) sealed()      {}
func (TeamMessagePayload) sealed()      {}
func (TeamHistoryPayload) sealed()      {}
func (GameStartedPayload) sealed()      {}
func (GameEndedPayload) sealed()        {}
func (GamePausedPayload) sealed()       {}
func (GameResumedPayload) sealed()      {}
func (GameRoundStartedPayload) sealed() {}
func (GameTurnStartedPayload) sealed()  {}
func (GameWordGuessedPayload) sealed()  {}
func (GameWordSkippedPayload) sealed()  {}
func (GameScoreUpdatedPayload) sealed() {}
func (ErrorPayload) sealed()            {}

// NewError builds the error event for a failed action
func NewError(name Name, err error) ErrorPayload {
	return ErrorPayload{Name: name, ErrorPayload: apperrors.Serialize(err)}
}

// Describe summarises an event for logging. The switch lists every event
// kind, so adding one without a case here is caught by the tests.
func Describe(e Event) string {
	switch ev := e.(type) {
	case RoomCreatedPayload:
		return "room " + ev.Room.ID + " created"
	case RoomJoinedPayload:
		return ev.PlayerID + " joined room " + ev.Room.ID
	case RoomLeftPayload:
		return ev.PlayerID + " left room " + ev.RoomID
	case RoomUpdatedPayload:
		return "room " + ev.Room.ID + " updated"
	case RoomDeletedPayload:
		return "room " + ev.RoomID + " deleted"
	case RoomStartedPayload:
		return "room " + ev.Room.ID + " started game " + ev.GameID
	case RoomEndedPayload:
		return "room " + ev.Room.ID + " ended"
	case TeamCreatedPayload:
		return "team " + ev.Team.ID + " created"
	case TeamJoinedPayload:
		return ev.UserID + " joined team " + ev.Team.ID
	case TeamLeftPayload:
		return ev.UserID + " left team " + ev.TeamID
	case TeamDeletedPayload:
		return "team " + ev.TeamID + " deleted"
	case TeamMessagePayload:
		return "message " + ev.Message.ID + " in team " + ev.TeamID
	case TeamHistoryPayload:
		return "history of team " + ev.TeamID
	case GameStartedPayload:
		return "game " + ev.Game.ID + " started"
	case GameEndedPayload:
		return "game " + ev.Game.ID + " ended"
	case GamePausedPayload:
		return "game " + ev.GameID + " paused"
	case GameResumedPayload:
		return "game " + ev.GameID + " resumed"
	case GameRoundStartedPayload:
		return "game " + ev.GameID + " round started"
	case GameTurnStartedPayload:
		return "game " + ev.GameID + " turn started"
	case GameWordGuessedPayload:
		return "word " + ev.WordID + " guessed in game " + ev.GameID
	case GameWordSkippedPayload:
		return "word " + ev.WordID + " skipped in game " + ev.GameID
	case GameScoreUpdatedPayload:
		return "score " + ev.Score.ID + " updated"
	case ErrorPayload:
		return string(ev.EventName()) + ": " + ev.Message
	default:
		return "unknown event"
	}
}
