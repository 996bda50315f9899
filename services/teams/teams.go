package teams

import (
	game_constants "Wordrush/constants/game"
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
	"github.com/zishang520/socket.io/v2/socket"
)

type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// Service manages the standalone chat teams, which live outside any room
type Service struct {
	teams       *repository.TeamRepository
	chat        *repository.TeamChatRepository
	locker      Locker
	broadcaster *socketio_types.Broadcaster
}

func NewService(teams *repository.TeamRepository, chat *repository.TeamChatRepository, locker Locker,
	broadcaster *socketio_types.Broadcaster) *Service {
	return &Service{
		teams:       teams,
		chat:        chat,
		locker:      locker,
		broadcaster: broadcaster,
	}
}

func lockKey(teamID string) string {
	return redis_utils.FormatLockKey(redis_utils.FormatTeamKey(teamID))
}

// load rejects room teams, which are managed through their room
func (s *Service) load(ctx context.Context, teamID string) (*redis_models.Team, error) {
	team, err := s.teams.MustGet(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.RoomID != "" {
		return nil, apperrors.NotFound("Team")
	}
	return team, nil
}

func (s *Service) CreateTeam(ctx context.Context, name, hostID, hostName string) (models.Team, error) {
	team, err := redis_models.NewTeam(uuid.NewString(), name, hostID, "")
	if err != nil {
		return models.Team{}, err
	}
	if err := s.teams.Save(ctx, team); err != nil {
		return models.Team{}, err
	}
	s.systemMessage(ctx, team.ID, fmt.Sprintf("%s created the team.", hostName))

	dto := models.TeamOf(team)
	s.broadcaster.EmitToAll(events.TeamCreatedPayload{Team: dto})
	log.Info().Str("team_id", team.ID).Str("user_id", hostID).Msg("[TEAM] Team created")
	return dto, nil
}

func (s *Service) Join(ctx context.Context, teamID, userID, userName string) (models.Team, error) {
	var dto models.Team
	err := s.locker.WithLock(ctx, lockKey(teamID), func() error {
		team, err := s.load(ctx, teamID)
		if err != nil {
			return err
		}
		if err := team.AddMember(userID); err != nil {
			return err
		}
		if err := s.teams.Save(ctx, team); err != nil {
			return err
		}
		dto = models.TeamOf(team)
		return nil
	})
	if err != nil {
		return models.Team{}, err
	}

	s.systemMessage(ctx, teamID, fmt.Sprintf("%s joined the team.", userName))
	s.broadcaster.EmitToGroup(socketio_types.TeamGroup(teamID), events.TeamJoinedPayload{Team: dto, UserID: userID})
	log.Info().Str("team_id", teamID).Str("user_id", userID).Msg("[JOIN] User joined team")
	return dto, nil
}

// Leave removes the user from the team. The last member leaving deletes
// the team and its chat, and nil is returned.
func (s *Service) Leave(ctx context.Context, teamID, userID, userName string) (*models.Team, error) {
	var (
		dto     *models.Team
		deleted bool
		changed bool
	)
	err := s.locker.WithLock(ctx, lockKey(teamID), func() error {
		team, err := s.load(ctx, teamID)
		if err != nil {
			return err
		}
		if team.HasMember(userID) {
			changed = true
			team.RemoveMember(userID)
		}
		if team.IsEmpty() {
			deleted = true
			if err := s.chat.Clear(ctx, teamID); err != nil {
				return err
			}
			return s.teams.Delete(ctx, teamID)
		}
		if changed {
			if err := s.teams.Save(ctx, team); err != nil {
				return err
			}
		}
		projection := models.TeamOf(team)
		dto = &projection
		return nil
	})
	if err != nil {
		return nil, err
	}

	if deleted {
		s.broadcaster.EmitToAll(events.TeamDeletedPayload{TeamID: teamID})
		log.Info().Str("team_id", teamID).Msg("[LEAVE] Last member left, team deleted")
		return nil, nil
	}
	if changed {
		s.systemMessage(ctx, teamID, fmt.Sprintf("%s left the team.", userName))
		s.broadcaster.EmitToGroup(socketio_types.TeamGroup(teamID), events.TeamLeftPayload{TeamID: teamID, UserID: userID, Team: dto})
		log.Info().Str("team_id", teamID).Str("user_id", userID).Msg("[LEAVE] User left team")
	}
	return dto, nil
}

// SendMessage posts to the team chat. origin is the sending connection,
// empty for HTTP callers.
func (s *Service) SendMessage(ctx context.Context, origin socket.SocketId, teamID, authorID, authorName, text string) (models.ChatMessage, error) {
	team, err := s.load(ctx, teamID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if !team.HasMember(authorID) {
		return models.ChatMessage{}, apperrors.ErrForbidden.WithMessage("Not a member of the team")
	}
	msg, err := redis_models.NewUserMessage(teamID, authorID, authorName, text)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if err := s.chat.Append(ctx, teamID, msg); err != nil {
		return models.ChatMessage{}, err
	}

	dto := models.ChatMessageOf(msg)
	s.broadcaster.EmitToGroupFrom(socketio_types.TeamGroup(teamID), origin, events.TeamMessagePayload{TeamID: teamID, Message: dto})
	log.Debug().Str("team_id", teamID).Str("user_id", authorID).Msg("[MSG] Team message sent")
	return dto, nil
}

// History returns the latest messages, oldest first. A zero limit uses the
// default page size.
func (s *Service) History(ctx context.Context, teamID string, limit int) ([]models.ChatMessage, error) {
	if limit == 0 {
		limit = game_constants.DEFAULT_HISTORY_LIMIT
	}
	if limit < 1 || limit > game_constants.MAX_HISTORY_LIMIT {
		return nil, apperrors.Validation("Invalid limit", apperrors.FieldError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 1 and %d", game_constants.MAX_HISTORY_LIMIT),
		})
	}
	if _, err := s.load(ctx, teamID); err != nil {
		return nil, err
	}
	messages, err := s.chat.History(ctx, teamID, limit)
	if err != nil {
		return nil, err
	}
	return models.ChatMessagesOf(messages), nil
}

func (s *Service) GetAll(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teams.ListStandalone(ctx)
	if err != nil {
		return nil, err
	}
	return models.TeamsOf(teams), nil
}

func (s *Service) Get(ctx context.Context, teamID string) (models.Team, error) {
	team, err := s.load(ctx, teamID)
	if err != nil {
		return models.Team{}, err
	}
	return models.TeamOf(team), nil
}

// systemMessage appends and broadcasts a system line. Failures are only
// logged.
func (s *Service) systemMessage(ctx context.Context, teamID, text string) {
	msg := redis_models.NewSystemMessage(teamID, text)
	if err := s.chat.Append(ctx, teamID, msg); err != nil {
		log.Error().Err(err).Str("team_id", teamID).Msg("[CHAT-ERROR] Error saving system message")
		return
	}
	s.broadcaster.EmitToGroup(socketio_types.TeamGroup(teamID), events.TeamMessagePayload{
		TeamID:  teamID,
		Message: models.ChatMessageOf(msg),
	})
}
