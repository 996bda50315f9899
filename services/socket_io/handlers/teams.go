package handlers

import (
	"Wordrush/models"
	redis_models "Wordrush/models/redis"
	"Wordrush/services/rooms"
	"Wordrush/services/socket_io/events"
	socketio_types "Wordrush/services/socket_io/types"
	socketio_utils "Wordrush/services/socket_io/utils"
	"Wordrush/services/teams"
	"Wordrush/utils/apperrors"
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/v2/socket"
)

// Team events address a room team when room_id is set and a standalone
// chat team otherwise

type teamJoinPayload struct {
	RoomID   string `json:"room_id"`
	TeamID   string `json:"team_id" binding:"omitempty,uuid"`
	TeamName string `json:"team_name"`
}

type teamPayload struct {
	RoomID string `json:"room_id"`
	TeamID string `json:"team_id" binding:"required"`
}

type teamMessagePayload struct {
	RoomID string `json:"room_id"`
	TeamID string `json:"team_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

type teamHistoryPayload struct {
	RoomID string `json:"room_id"`
	TeamID string `json:"team_id" binding:"required"`
	Limit  int    `json:"limit" binding:"omitempty,min=1,max=200"`
}

// HandleTeamJoin joins (or creates) a team and subscribes the caller to its
// chat. Joining a team the caller already belongs to only re-subscribes,
// which is what a reconnecting client needs.
func HandleTeamJoin(roomSvc *rooms.Service, teamSvc *teams.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msg("[TEAM] HandleTeamJoin")

		var payload teamJoinPayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.TeamError, "TEAM", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()

		if payload.RoomID != "" {
			result, err := roomSvc.JoinTeam(ctx, payload.RoomID, payload.TeamID, payload.TeamName, user.UserID, user.Username)
			teamID := result.Team.ID
			if errors.Is(err, apperrors.ErrAlreadyInTeam) {
				teamID, err = payload.TeamID, nil
			}
			if err != nil {
				emitError(client, events.TeamError, "TEAM", err)
				return
			}
			for _, left := range result.Left {
				client.Leave(socket.Room(socketio_types.RoomTeamGroup(payload.RoomID, left)))
			}
			client.Join(socket.Room(socketio_types.RoomTeamGroup(payload.RoomID, teamID)))
			sendRoomTeamHistory(ctx, roomSvc, client, payload.RoomID, teamID, 0)
			return
		}

		var (
			team models.Team
			err  error
		)
		switch {
		case payload.TeamID != "":
			team, err = teamSvc.Join(ctx, payload.TeamID, user.UserID, user.Username)
			if errors.Is(err, apperrors.ErrAlreadyInTeam) {
				team, err = teamSvc.Get(ctx, payload.TeamID)
			}
		case payload.TeamName != "":
			team, err = teamSvc.CreateTeam(ctx, payload.TeamName, user.UserID, user.Username)
		default:
			err = apperrors.Validation("Validation failed", apperrors.FieldError{Field: "teamID", Message: "is required"})
		}
		if err != nil {
			emitError(client, events.TeamError, "TEAM", err)
			return
		}
		client.Join(socket.Room(socketio_types.TeamGroup(team.ID)))
		sendTeamHistory(ctx, teamSvc, client, team.ID, 0)
	}
}

func HandleTeamLeave(roomSvc *rooms.Service, teamSvc *teams.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msg("[LEAVE] HandleTeamLeave")

		var payload teamPayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.TeamError, "LEAVE", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()

		if payload.RoomID != "" {
			if err := roomSvc.LeaveTeam(ctx, payload.RoomID, payload.TeamID, user.UserID, user.Username); err != nil {
				emitError(client, events.TeamError, "LEAVE", err)
				return
			}
			client.Leave(socket.Room(socketio_types.RoomTeamGroup(payload.RoomID, payload.TeamID)))
			return
		}
		if _, err := teamSvc.Leave(ctx, payload.TeamID, user.UserID, user.Username); err != nil {
			emitError(client, events.TeamError, "LEAVE", err)
			return
		}
		client.Leave(socket.Room(socketio_types.TeamGroup(payload.TeamID)))
	}
}

// HandleTeamMessage posts to a team chat, throttled per connection
func HandleTeamMessage(roomSvc *rooms.Service, teamSvc *teams.Service, limiter *socketio_utils.ChatLimiter,
	client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		if !limiter.Allow(client.Id()) {
			emitError(client, events.TeamError, "MSG", apperrors.ErrRateLimited)
			return
		}

		var payload teamMessagePayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.TeamError, "MSG", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()

		var err error
		if payload.RoomID != "" {
			_, err = roomSvc.SendTeamMessage(ctx, client.Id(), payload.RoomID, payload.TeamID, user.UserID, user.Username, payload.Text)
		} else {
			_, err = teamSvc.SendMessage(ctx, client.Id(), payload.TeamID, user.UserID, user.Username, payload.Text)
		}
		if err != nil {
			emitError(client, events.TeamError, "MSG", err)
		}
	}
}

func HandleTeamHistory(roomSvc *rooms.Service, teamSvc *teams.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msg("[TEAM] HandleTeamHistory")

		var payload teamHistoryPayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.TeamError, "TEAM", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()
		if payload.RoomID != "" {
			sendRoomTeamHistory(ctx, roomSvc, client, payload.RoomID, payload.TeamID, payload.Limit)
			return
		}
		sendTeamHistory(ctx, teamSvc, client, payload.TeamID, payload.Limit)
	}
}

func sendRoomTeamHistory(ctx context.Context, svc *rooms.Service, client Client, roomID, teamID string, limit int) {
	messages, err := svc.TeamHistory(ctx, roomID, teamID, limit)
	if err != nil {
		emitError(client, events.TeamError, "TEAM", err)
		return
	}
	reply(client, events.TeamHistoryPayload{TeamID: teamID, RoomID: roomID, Messages: messages})
}

func sendTeamHistory(ctx context.Context, svc *teams.Service, client Client, teamID string, limit int) {
	messages, err := svc.History(ctx, teamID, limit)
	if err != nil {
		emitError(client, events.TeamError, "TEAM", err)
		return
	}
	reply(client, events.TeamHistoryPayload{TeamID: teamID, Messages: messages})
}
