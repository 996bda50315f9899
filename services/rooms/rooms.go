package rooms

import (
	"Wordrush/models"
	redis_models "Wordrush/models/redis"
	redis_utils "Wordrush/services/redis/utils"
	"Wordrush/services/repository"
	"Wordrush/services/socket_io/events"
	socketio_types "Wordrush/services/socket_io/types"
	"Wordrush/utils/apperrors"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// Service runs the room verbs: load the room, let it validate and mutate
// itself, persist it and fan the new state out
type Service struct {
	rooms       *repository.RoomRepository
	teams       *repository.TeamRepository
	chat        *repository.RoomTeamChatRepository
	locker      Locker
	broadcaster *socketio_types.Broadcaster
}

func NewService(rooms *repository.RoomRepository, teams *repository.TeamRepository, chat *repository.RoomTeamChatRepository,
	locker Locker, broadcaster *socketio_types.Broadcaster) *Service {
	return &Service{
		rooms:       rooms,
		teams:       teams,
		chat:        chat,
		locker:      locker,
		broadcaster: broadcaster,
	}
}

// LockKey is the lock guarding every mutation of the room
func LockKey(roomID string) string {
	return redis_utils.FormatLockKey(redis_utils.FormatRoomKey(roomID))
}

// withRoom loads the room under its lock. Returning an error from fn
// discards the mutation.
func (s *Service) withRoom(ctx context.Context, roomID string, fn func(room *redis_models.Room) error) error {
	return s.locker.WithLock(ctx, LockKey(roomID), func() error {
		room, err := s.rooms.MustGet(ctx, roomID)
		if err != nil {
			return err
		}
		return fn(room)
	})
}

// CreateRoom creates a waiting room hosted (and joined) by hostID. A nil
// config uses the defaults.
func (s *Service) CreateRoom(ctx context.Context, hostID, name string, config *redis_models.RoomConfig) (models.Room, error) {
	cfg := redis_models.DefaultRoomConfig()
	if config != nil {
		cfg = *config
	}
	room, err := redis_models.NewRoom(uuid.NewString(), name, hostID, cfg)
	if err != nil {
		return models.Room{}, err
	}
	if err := s.rooms.Save(ctx, room); err != nil {
		return models.Room{}, err
	}

	dto := models.RoomOf(room)
	s.broadcaster.EmitToAll(events.RoomCreatedPayload{Room: dto})
	log.Info().Str("room_id", room.ID).Str("host_id", hostID).Msg("[ROOM] Room created")
	return dto, nil
}

func (s *Service) JoinRoom(ctx context.Context, roomID, playerID string) (models.Room, error) {
	var dto models.Room
	err := s.withRoom(ctx, roomID, func(room *redis_models.Room) error {
		if err := room.AddPlayer(playerID); err != nil {
			return err
		}
		if err := s.rooms.Save(ctx, room); err != nil {
			return err
		}
		dto = models.RoomOf(room)
		return nil
	})
	if err != nil {
		return models.Room{}, err
	}

	joined := events.RoomJoinedPayload{Room: dto, PlayerID: playerID}
	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), joined)
	// The joiner's connections do not listen to the room yet
	s.broadcaster.EmitToUser(playerID, joined)
	log.Info().Str("room_id", roomID).Str("user_id", playerID).Msg("[JOIN] Player joined room")
	return dto, nil
}

// LeaveRoom removes the player from the room and from its team there. The
// room is deleted once empty, in which case nil is returned. Leaving an
// unknown room is a no-op.
func (s *Service) LeaveRoom(ctx context.Context, roomID, playerID string) (*models.Room, error) {
	var (
		dto     *models.Room
		deleted bool
		left    []teamChange
	)
	err := s.locker.WithLock(ctx, LockKey(roomID), func() error {
		room, err := s.rooms.Get(ctx, roomID)
		if err != nil || room == nil {
			return err
		}
		if !room.HasPlayer(playerID) {
			projection := models.RoomOf(room)
			dto = &projection
			return nil
		}
		room.RemovePlayer(playerID)

		if room.IsEmpty() {
			deleted = true
			return s.deleteRoom(ctx, room)
		}
		if left, err = s.dropFromTeams(ctx, room, playerID, ""); err != nil {
			return err
		}
		if err := s.rooms.Save(ctx, room); err != nil {
			return err
		}
		projection := models.RoomOf(room)
		dto = &projection
		return nil
	})
	if err != nil {
		return nil, err
	}

	if deleted {
		s.broadcaster.EmitToAll(events.RoomDeletedPayload{RoomID: roomID})
		log.Info().Str("room_id", roomID).Msg("[LEAVE] Last player left, room deleted")
		return nil, nil
	}
	if dto == nil {
		return nil, nil
	}
	s.emitTeamChanges(roomID, playerID, left)
	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), events.RoomLeftPayload{RoomID: roomID, PlayerID: playerID, Room: dto})
	log.Info().Str("room_id", roomID).Str("user_id", playerID).Msg("[LEAVE] Player left room")
	return dto, nil
}

// RenameRoom lets the host rename a room that has not started
func (s *Service) RenameRoom(ctx context.Context, roomID, callerID, name string) (models.Room, error) {
	var dto models.Room
	err := s.withRoom(ctx, roomID, func(room *redis_models.Room) error {
		if !room.IsHost(callerID) {
			return apperrors.ErrForbidden.WithMessage("Only the host can rename the room")
		}
		if err := room.Rename(name); err != nil {
			return err
		}
		if err := s.rooms.Save(ctx, room); err != nil {
			return err
		}
		dto = models.RoomOf(room)
		return nil
	})
	if err != nil {
		return models.Room{}, err
	}

	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), events.RoomUpdatedPayload{Room: dto})
	log.Info().Str("room_id", roomID).Str("user_id", callerID).Msg("[ROOM] Room renamed")
	return dto, nil
}

// DeleteRoom lets the host close a room that has not started
func (s *Service) DeleteRoom(ctx context.Context, roomID, callerID string) error {
	err := s.withRoom(ctx, roomID, func(room *redis_models.Room) error {
		if !room.IsHost(callerID) {
			return apperrors.ErrForbidden.WithMessage("Only the host can delete the room")
		}
		if !room.IsOpen() {
			return apperrors.ErrRoomNotWaiting
		}
		return s.deleteRoom(ctx, room)
	})
	if err != nil {
		return err
	}

	s.broadcaster.EmitToAll(events.RoomDeletedPayload{RoomID: roomID})
	log.Info().Str("room_id", roomID).Str("user_id", callerID).Msg("[ROOM] Room deleted by host")
	return nil
}

// deleteRoom removes the room with its teams and their chats
func (s *Service) deleteRoom(ctx context.Context, room *redis_models.Room) error {
	for _, teamID := range room.TeamIDs {
		if err := s.teams.Delete(ctx, teamID); err != nil {
			return err
		}
	}
	if err := s.chat.Clear(ctx, room.ID, room.TeamIDs...); err != nil {
		return fmt.Errorf("error clearing chats of room %s: %w", room.ID, err)
	}
	return s.rooms.Delete(ctx, room.ID)
}

func (s *Service) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	room, err := s.rooms.MustGet(ctx, roomID)
	if err != nil {
		return models.Room{}, err
	}
	return models.RoomOf(room), nil
}

func (s *Service) ListRooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return models.RoomsOf(rooms), nil
}

// ListAvailableRooms returns the rooms that are waiting for players
func (s *Service) ListAvailableRooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.rooms.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return models.RoomsOf(rooms), nil
}
