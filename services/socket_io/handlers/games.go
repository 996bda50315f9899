package handlers

import (
	"Wordrush/models"
	redis_models "Wordrush/models/redis"
	"Wordrush/services/games"
	"Wordrush/services/scores"
	"Wordrush/services/session"
	"Wordrush/services/socket_io/events"
	socketio_utils "Wordrush/services/socket_io/utils"
	"context"

	"github.com/rs/zerolog/log"
)

type startGamePayload struct {
	RoomID string `json:"room_id" binding:"required"`
}

type gamePayload struct {
	GameID string `json:"game_id" binding:"required"`
}

type wordPayload struct {
	GameID string `json:"game_id" binding:"required"`
	WordID string `json:"word_id" binding:"required"`
}

type scoreUpdatePayload struct {
	RoomID string `json:"room_id" binding:"required"`
	TeamID string `json:"team_id" binding:"required"`
	Wins   *int   `json:"wins" binding:"omitempty,min=0"`
	Losses *int   `json:"losses" binding:"omitempty,min=0"`
	Draws  *int   `json:"draws" binding:"omitempty,min=0"`
}

// GameAction is a game operation driven by the game id alone
type GameAction func(ctx context.Context, gameID, callerID string) (models.Game, error)

func HandleStartGame(svc *games.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msg("[GAME] HandleStartGame")

		var payload startGamePayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.GameError, "GAME", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()
		if _, err := svc.StartGame(ctx, payload.RoomID, user.UserID); err != nil {
			emitError(client, events.GameError, "GAME", err)
		}
	}
}

// HandleGameAction binds one of next-turn, next-round, pause, resume or end.
// The outcome reaches the caller through the room broadcast.
func HandleGameAction(action GameAction, tag string, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msgf("[%s] HandleGameAction", tag)

		var payload gamePayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.GameError, tag, err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()
		if _, err := action(ctx, payload.GameID, user.UserID); err != nil {
			emitError(client, events.GameError, tag, err)
		}
	}
}

func HandleGuess(svc *games.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return handleWord(svc.GuessWord, "GUESS", client, user)
}

func HandleSkip(svc *games.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return handleWord(svc.SkipWord, "SKIP", client, user)
}

func handleWord(action func(ctx context.Context, gameID, callerID, wordID string) (models.Game, error), tag string,
	client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		var payload wordPayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.GameError, tag, err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()
		if _, err := action(ctx, payload.GameID, user.UserID, payload.WordID); err != nil {
			emitError(client, events.GameError, tag, err)
		}
	}
}

// HandleScoreUpdate lets an admin correct a team score by hand
func HandleScoreUpdate(svc *scores.Service, adminPriority int, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msg("[SCORE] HandleScoreUpdate")

		if !session.HasMinPriority(user, adminPriority) {
			emitError(client, events.GameError, "SCORE", errForbiddenScore)
			return
		}

		var payload scoreUpdatePayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.GameError, "SCORE", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()
		update := redis_models.ScoreUpdate{Wins: payload.Wins, Losses: payload.Losses, Draws: payload.Draws}
		if _, err := svc.UpdateTeamScore(ctx, payload.RoomID, payload.TeamID, update); err != nil {
			emitError(client, events.GameError, "SCORE", err)
		}
	}
}
