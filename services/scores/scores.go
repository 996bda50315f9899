package scores

import (
	"Wordrush/models"
	"Wordrush/models/postgres"
	redis_models "Wordrush/models/redis"
	redis_utils "Wordrush/services/redis/utils"
	"Wordrush/services/repository"
	"Wordrush/services/socket_io/events"
	socketio_types "Wordrush/services/socket_io/types"
	"Wordrush/utils/apperrors"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// UserScoreStore persists the per-user counters
type UserScoreStore interface {
	FindByUserID(ctx context.Context, userID string) (*postgres.ScoreUser, error)
	Save(ctx context.Context, score *postgres.ScoreUser) error
	AddResult(ctx context.Context, userIDs []string, column string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type Service struct {
	scores      *repository.ScoreTeamRepository
	teams       *repository.TeamRepository
	users       UserScoreStore
	locker      Locker
	broadcaster *socketio_types.Broadcaster
}

func NewService(scores *repository.ScoreTeamRepository, teams *repository.TeamRepository, users UserScoreStore,
	locker Locker, broadcaster *socketio_types.Broadcaster) *Service {
	return &Service{
		scores:      scores,
		teams:       teams,
		users:       users,
		locker:      locker,
		broadcaster: broadcaster,
	}
}

func lockKey(roomID, teamID string) string {
	return redis_utils.FormatLockKey(redis_utils.FormatScoreTeamKey(redis_models.ScoreTeamID(roomID, teamID)))
}

// InitRoom creates a zeroed score for every team of a room that has none
func (s *Service) InitRoom(ctx context.Context, roomID string, teamIDs []string) error {
	for _, teamID := range teamIDs {
		err := s.locker.WithLock(ctx, lockKey(roomID, teamID), func() error {
			existing, err := s.scores.GetFor(ctx, roomID, teamID)
			if err != nil || existing != nil {
				return err
			}
			return s.scores.Save(ctx, redis_models.NewScoreTeam(redis_models.ScoreTeamID(roomID, teamID), roomID, teamID))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateTeamScore replaces the supplied counters of an existing score. The
// caller must be trusted (admin or the game engine).
func (s *Service) UpdateTeamScore(ctx context.Context, roomID, teamID string, update redis_models.ScoreUpdate) (models.Score, error) {
	var dto models.Score
	err := s.locker.WithLock(ctx, lockKey(roomID, teamID), func() error {
		score, err := s.scores.GetFor(ctx, roomID, teamID)
		if err != nil {
			return err
		}
		if score == nil {
			return apperrors.NotFound("Score")
		}
		if err := score.Apply(update); err != nil {
			return err
		}
		if err := s.scores.Save(ctx, score); err != nil {
			return err
		}
		dto = models.ScoreTeamOf(score)
		return nil
	})
	if err != nil {
		return models.Score{}, err
	}

	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), events.GameScoreUpdatedPayload{Score: dto})
	log.Info().Str("room_id", roomID).Str("team_id", teamID).Msg("[SCORE] Team score updated")
	return dto, nil
}

func (s *Service) GetTeamScore(ctx context.Context, roomID, teamID string) (models.Score, error) {
	score, err := s.scores.GetFor(ctx, roomID, teamID)
	if err != nil {
		return models.Score{}, err
	}
	if score == nil {
		return models.Score{}, apperrors.NotFound("Score")
	}
	return models.ScoreTeamOf(score), nil
}

// ResetTeamScore removes the score of a team. The next result recorded
// for it starts from zero.
func (s *Service) ResetTeamScore(ctx context.Context, roomID, teamID string) error {
	err := s.locker.WithLock(ctx, lockKey(roomID, teamID), func() error {
		score, err := s.scores.GetFor(ctx, roomID, teamID)
		if err != nil {
			return err
		}
		if score == nil {
			return apperrors.NotFound("Score")
		}
		return s.scores.DeleteFor(ctx, roomID, teamID)
	})
	if err != nil {
		return err
	}
	log.Info().Str("room_id", roomID).Str("team_id", teamID).Msg("[SCORE] Team score reset")
	return nil
}

func (s *Service) ListRoomScores(ctx context.Context, roomID string) ([]models.Score, error) {
	scores, err := s.scores.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Score, 0, len(scores))
	for _, score := range scores {
		out = append(out, models.ScoreTeamOf(score))
	}
	return out, nil
}

// RecordGameResult counts a win for every winner and a loss for every other
// team. When every team is a winner the game is a draw. Members of each team
// get the same result on their persistent score.
func (s *Service) RecordGameResult(ctx context.Context, roomID string, teamIDs, winners []string) error {
	winnerSet := make(map[string]bool, len(winners))
	for _, teamID := range winners {
		winnerSet[teamID] = true
	}
	draw := len(winners) == len(teamIDs)

	var errs []error
	for _, teamID := range teamIDs {
		column := "losses"
		switch {
		case draw:
			column = "draws"
		case winnerSet[teamID]:
			column = "wins"
		}
		if err := s.recordTeam(ctx, roomID, teamID, column); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) recordTeam(ctx context.Context, roomID, teamID, column string) error {
	var dto models.Score
	err := s.locker.WithLock(ctx, lockKey(roomID, teamID), func() error {
		score, err := s.scores.GetFor(ctx, roomID, teamID)
		if err != nil {
			return err
		}
		if score == nil {
			score = redis_models.NewScoreTeam(redis_models.ScoreTeamID(roomID, teamID), roomID, teamID)
		}
		var update redis_models.ScoreUpdate
		switch column {
		case "wins":
			v := score.Wins + 1
			update.Wins = &v
		case "losses":
			v := score.Losses + 1
			update.Losses = &v
		default:
			v := score.Draws + 1
			update.Draws = &v
		}
		if err := score.Apply(update); err != nil {
			return err
		}
		if err := s.scores.Save(ctx, score); err != nil {
			return err
		}
		dto = models.ScoreTeamOf(score)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error recording result of team %s: %w", teamID, err)
	}
	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(roomID), events.GameScoreUpdatedPayload{Score: dto})

	if s.users == nil {
		return nil
	}
	team, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team == nil || len(team.Members) == 0 {
		return nil
	}
	if err := s.users.AddResult(ctx, team.Members, column); err != nil {
		return err
	}
	log.Debug().Str("team_id", teamID).Str("result", column).Int("members", len(team.Members)).
		Msg("[SCORE] User scores updated")
	return nil
}

func (s *Service) GetUserScore(ctx context.Context, userID string) (models.Score, error) {
	if s.users == nil {
		return models.Score{}, apperrors.NotFound("Score")
	}
	score, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		return models.Score{}, err
	}
	if score == nil {
		return models.Score{}, apperrors.NotFound("Score")
	}
	return models.ScoreUserOf(score), nil
}

// UpdateUserScore replaces the supplied counters, creating the score when
// the user has none
func (s *Service) UpdateUserScore(ctx context.Context, userID string, update redis_models.ScoreUpdate) (models.Score, error) {
	if err := update.Validate(); err != nil {
		return models.Score{}, err
	}
	if s.users == nil {
		return models.Score{}, apperrors.Unexpected(errors.New("user score store not configured"))
	}
	score, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		return models.Score{}, err
	}
	if score == nil {
		score = &postgres.ScoreUser{UserID: userID}
	}
	if update.Wins != nil {
		score.Wins = *update.Wins
	}
	if update.Losses != nil {
		score.Losses = *update.Losses
	}
	if update.Draws != nil {
		score.Draws = *update.Draws
	}
	if err := s.users.Save(ctx, score); err != nil {
		return models.Score{}, err
	}
	log.Info().Str("user_id", userID).Msg("[SCORE] User score updated")
	return models.ScoreUserOf(score), nil
}

// ResetUserScore drops the persistent counters of a user
func (s *Service) ResetUserScore(ctx context.Context, userID string) error {
	if s.users == nil {
		return apperrors.Unexpected(errors.New("user score store not configured"))
	}
	score, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if score == nil {
		return apperrors.NotFound("Score")
	}
	if err := s.users.DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	log.Info().Str("user_id", userID).Msg("[SCORE] User score reset")
	return nil
}
