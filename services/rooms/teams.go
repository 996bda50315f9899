package rooms

import (
	"Wordrush/models"
	redis_models "Wordrush/models/redis"
	"Wordrush/services/socket_io/events"
	socketio_types "Wordrush/services/socket_io/types"
	"Wordrush/utils/apperrors"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/v2/socket"
)

// teamChange is the outcome of a player leaving a room team. Team is nil
// when the team was deleted.
type teamChange struct {
	teamID  string
	team    *models.Team
	message *redis_models.ChatMessage
}

// JoinTeamResult carries the joined team and the teams the player left to
// join it (a player belongs to one team per room)
type JoinTeamResult struct {
	Team models.Team
	Left []string
}

// JoinTeam puts a room player in an existing team of the room, or creates
// a new one named teamName when teamID is empty.
func (s *Service) JoinTeam(ctx context.Context, roomID, teamID, teamName, playerID, playerName string) (JoinTeamResult, error) {
	var (
		result      JoinTeamResult
		created     bool
		left        []teamChange
		joinMessage *redis_models.ChatMessage
		roomDTO     models.Room
	)
	err := s.withRoom(ctx, roomID, func(room *redis_models.Room) error {
		if !room.HasPlayer(playerID) {
			return apperrors.ErrNotInRoom
		}
		if !room.IsOpen() {
			return apperrors.ErrRoomNotWaiting
		}

		var team *redis_models.Team
		if teamID != "" {
			existing, err := s.teams.Get(ctx, teamID)
			if err != nil {
				return err
			}
			if existing == nil || existing.RoomID != roomID {
				return apperrors.NotFound("Team")
			}
			team = existing
		}

		if team == nil {
			name := teamName
			if name == "" {
				name = fmt.Sprintf("Team %d", len(room.TeamIDs)+1)
			}
			newTeam, err := redis_models.NewTeam(uuid.NewString(), name, playerID, roomID)
			if err != nil {
				return err
			}
			team = newTeam
			created = true
		} else if err := team.AddMember(playerID); err != nil {
			return err
		}
		if !room.HasTeam(team.ID) {
			if err := room.AddTeam(team.ID); err != nil {
				return err
			}
		}

		var err error
		if left, err = s.dropFromTeams(ctx, room, playerID, team.ID); err != nil {
			return err
		}
		if err := s.teams.Save(ctx, team); err != nil {
			return err
		}
		if err := s.rooms.Save(ctx, room); err != nil {
			return err
		}

		joinMessage = s.systemMessage(ctx, roomID, team.ID, fmt.Sprintf("%s joined the team.", displayName(playerID, playerName)))
		result.Team = models.TeamOf(team)
		roomDTO = models.RoomOf(room)
		return nil
	})
	if err != nil {
		return JoinTeamResult{}, err
	}

	for _, change := range left {
		result.Left = append(result.Left, change.teamID)
	}
	s.emitTeamChanges(roomID, playerID, left)
	if created {
		s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), events.TeamCreatedPayload{Team: result.Team})
	}
	s.emitSystemMessage(roomID, result.Team.ID, joinMessage)
	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), events.TeamJoinedPayload{Team: result.Team, UserID: playerID})
	if created || len(left) > 0 {
		s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), events.RoomUpdatedPayload{Room: roomDTO})
	}
	log.Info().Str("room_id", roomID).Str("team_id", result.Team.ID).Str("user_id", playerID).Msg("[TEAM] Player joined team")
	return result, nil
}

// LeaveTeam removes a player from a room team. Leaving a team the player
// is not part of is a no-op.
func (s *Service) LeaveTeam(ctx context.Context, roomID, teamID, playerID, playerName string) error {
	var (
		change  *teamChange
		roomDTO *models.Room
	)
	err := s.withRoom(ctx, roomID, func(room *redis_models.Room) error {
		team, err := s.teams.Get(ctx, teamID)
		if err != nil {
			return err
		}
		if team == nil || team.RoomID != roomID {
			return apperrors.NotFound("Team")
		}
		if !team.HasMember(playerID) {
			return nil
		}
		c, err := s.removeMember(ctx, room, team, playerID, displayName(playerID, playerName))
		if err != nil {
			return err
		}
		change = &c
		if c.team == nil {
			if err := s.rooms.Save(ctx, room); err != nil {
				return err
			}
			dto := models.RoomOf(room)
			roomDTO = &dto
		}
		return nil
	})
	if err != nil || change == nil {
		return err
	}

	s.emitTeamChanges(roomID, playerID, []teamChange{*change})
	if roomDTO != nil {
		s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), events.RoomUpdatedPayload{Room: *roomDTO})
	}
	log.Info().Str("room_id", roomID).Str("team_id", teamID).Str("user_id", playerID).Msg("[TEAM] Player left team")
	return nil
}

// dropFromTeams removes the player from every team of the room but keep.
// The caller saves the room.
func (s *Service) dropFromTeams(ctx context.Context, room *redis_models.Room, playerID, keep string) ([]teamChange, error) {
	var changes []teamChange
	for _, teamID := range append([]string{}, room.TeamIDs...) {
		if teamID == keep {
			continue
		}
		team, err := s.teams.Get(ctx, teamID)
		if err != nil {
			return nil, err
		}
		if team == nil || !team.HasMember(playerID) {
			continue
		}
		change, err := s.removeMember(ctx, room, team, playerID, displayName(playerID, ""))
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// removeMember deletes the team when its last member leaves before the game
// starts. Teams of a running game are kept, even empty, so results can
// still be recorded.
func (s *Service) removeMember(ctx context.Context, room *redis_models.Room, team *redis_models.Team, playerID, who string) (teamChange, error) {
	team.RemoveMember(playerID)
	if team.IsEmpty() && room.IsOpen() {
		if err := room.RemoveTeam(team.ID); err != nil {
			return teamChange{}, err
		}
		if err := s.teams.Delete(ctx, team.ID); err != nil {
			return teamChange{}, err
		}
		if err := s.chat.Clear(ctx, room.ID, team.ID); err != nil {
			return teamChange{}, err
		}
		return teamChange{teamID: team.ID}, nil
	}
	if err := s.teams.Save(ctx, team); err != nil {
		return teamChange{}, err
	}
	dto := models.TeamOf(team)
	return teamChange{
		teamID:  team.ID,
		team:    &dto,
		message: s.systemMessage(ctx, room.ID, team.ID, fmt.Sprintf("%s left the team.", who)),
	}, nil
}

func (s *Service) emitTeamChanges(roomID, playerID string, changes []teamChange) {
	for _, change := range changes {
		if change.team == nil {
			s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), events.TeamDeletedPayload{TeamID: change.teamID, RoomID: roomID})
			continue
		}
		s.emitSystemMessage(roomID, change.teamID, change.message)
		s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), events.TeamLeftPayload{TeamID: change.teamID, UserID: playerID, Team: change.team})
	}
}

// systemMessage appends a system line to the team chat. Chat failures are
// logged and never fail the membership change.
func (s *Service) systemMessage(ctx context.Context, roomID, teamID, text string) *redis_models.ChatMessage {
	msg := redis_models.NewSystemMessage(socketio_types.RoomTeamGroup(roomID, teamID), text)
	if err := s.chat.Append(ctx, roomID, teamID, msg); err != nil {
		log.Error().Err(err).Str("room_id", roomID).Str("team_id", teamID).Msg("[CHAT-ERROR] Error saving system message")
		return nil
	}
	return msg
}

func (s *Service) emitSystemMessage(roomID, teamID string, msg *redis_models.ChatMessage) {
	if msg == nil {
		return
	}
	s.broadcaster.EmitToGroup(socketio_types.RoomTeamGroup(roomID, teamID), events.TeamMessagePayload{
		TeamID:  teamID,
		RoomID:  roomID,
		Message: models.ChatMessageOf(msg),
	})
}

// SendTeamMessage posts to the chat of a room team. Only its members can.
// origin is the sending connection, empty for HTTP callers.
func (s *Service) SendTeamMessage(ctx context.Context, origin socket.SocketId, roomID, teamID, authorID, authorName, text string) (models.ChatMessage, error) {
	room, err := s.rooms.MustGet(ctx, roomID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if !room.HasPlayer(authorID) {
		return models.ChatMessage{}, apperrors.ErrNotInRoom
	}
	if !room.HasTeam(teamID) {
		return models.ChatMessage{}, apperrors.NotFound("Team")
	}
	team, err := s.teams.MustGet(ctx, teamID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if !team.HasMember(authorID) {
		return models.ChatMessage{}, apperrors.ErrForbidden.WithMessage("Not a member of the team")
	}

	msg, err := redis_models.NewUserMessage(socketio_types.RoomTeamGroup(roomID, teamID), authorID, authorName, text)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if err := s.chat.Append(ctx, roomID, teamID, msg); err != nil {
		return models.ChatMessage{}, err
	}

	dto := models.ChatMessageOf(msg)
	s.broadcaster.EmitToGroupFrom(socketio_types.RoomTeamGroup(roomID, teamID), origin, events.TeamMessagePayload{
		TeamID:  teamID,
		RoomID:  roomID,
		Message: dto,
	})
	log.Debug().Str("room_id", roomID).Str("team_id", teamID).Str("user_id", authorID).Msg("[CHAT] Team message sent")
	return dto, nil
}

// TeamHistory returns up to limit of the latest messages, oldest first
func (s *Service) TeamHistory(ctx context.Context, roomID, teamID string, limit int) ([]models.ChatMessage, error) {
	room, err := s.rooms.MustGet(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasTeam(teamID) {
		return nil, apperrors.NotFound("Team")
	}
	messages, err := s.chat.History(ctx, roomID, teamID, limit)
	if err != nil {
		return nil, err
	}
	return models.ChatMessagesOf(messages), nil
}

func displayName(playerID, playerName string) string {
	if playerName != "" {
		return playerName
	}
	return fmt.Sprintf("Player %s", playerID)
}
