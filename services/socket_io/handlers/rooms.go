package handlers

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/rooms"
	"Wordrush/services/socket_io/events"
	socketio_types "Wordrush/services/socket_io/types"
	socketio_utils "Wordrush/services/socket_io/utils"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/v2/socket"
)

type createRoomPayload struct {
	Name   string                   `json:"name" binding:"required"`
	Config *redis_models.RoomConfig `json:"room_config"`
}

type roomPayload struct {
	RoomID string `json:"room_id" binding:"required"`
}

type renameRoomPayload struct {
	RoomID string `json:"room_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

// HandleCreateRoom creates a room hosted by the caller and subscribes the
// caller to it
func HandleCreateRoom(svc *rooms.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msg("[ROOM] HandleCreateRoom")

		var payload createRoomPayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.RoomError, "ROOM", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()
		room, err := svc.CreateRoom(ctx, user.UserID, payload.Name, payload.Config)
		if err != nil {
			emitError(client, events.RoomError, "ROOM", err)
			return
		}
		client.Join(socket.Room(socketio_types.RoomGroup(room.ID)))
	}
}

func HandleJoinRoom(svc *rooms.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msg("[JOIN] HandleJoinRoom")

		var payload roomPayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.RoomError, "JOIN", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()
		room, err := svc.JoinRoom(ctx, payload.RoomID, user.UserID)
		if err != nil {
			emitError(client, events.RoomError, "JOIN", err)
			return
		}
		client.Join(socket.Room(socketio_types.RoomGroup(room.ID)))
	}
}

// HandleRenameRoom lets the host rename a waiting room
func HandleRenameRoom(svc *rooms.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msg("[ROOM] HandleRenameRoom")

		var payload renameRoomPayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.RoomError, "ROOM", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()
		if _, err := svc.RenameRoom(ctx, payload.RoomID, user.UserID, payload.Name); err != nil {
			emitError(client, events.RoomError, "ROOM", err)
		}
	}
}

// HandleLeaveRoom removes the caller from the room and unsubscribes it from
// the room and its team chats
func HandleLeaveRoom(svc *rooms.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msg("[LEAVE] HandleLeaveRoom")

		var payload roomPayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.RoomError, "LEAVE", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()
		var teamIDs []string
		if before, err := svc.GetRoom(ctx, payload.RoomID); err == nil {
			teamIDs = before.TeamIDs
		}
		if _, err := svc.LeaveRoom(ctx, payload.RoomID, user.UserID); err != nil {
			emitError(client, events.RoomError, "LEAVE", err)
			return
		}
		leaveRoomGroups(client, payload.RoomID, teamIDs)
	}
}

// HandleDeleteRoom lets the host close a room that has not started
func HandleDeleteRoom(svc *rooms.Service, client Client, user *redis_models.SessionData) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Debug().Str("user_id", user.UserID).Str("socket_id", string(client.Id())).Msg("[ROOM] HandleDeleteRoom")

		var payload roomPayload
		if err := socketio_utils.DecodePayload(args, &payload); err != nil {
			emitError(client, events.RoomError, "ROOM", err)
			return
		}

		ctx, cancel := eventContext()
		defer cancel()
		var teamIDs []string
		if before, err := svc.GetRoom(ctx, payload.RoomID); err == nil {
			teamIDs = before.TeamIDs
		}
		if err := svc.DeleteRoom(ctx, payload.RoomID, user.UserID); err != nil {
			emitError(client, events.RoomError, "ROOM", err)
			return
		}
		leaveRoomGroups(client, payload.RoomID, teamIDs)
	}
}

func leaveRoomGroups(client Client, roomID string, teamIDs []string) {
	for _, teamID := range teamIDs {
		client.Leave(socket.Room(socketio_types.RoomTeamGroup(roomID, teamID)))
	}
	client.Leave(socket.Room(socketio_types.RoomGroup(roomID)))
}
