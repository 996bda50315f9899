package repository

import (
	redis_models "Wordrush/models/redis"
	redis_utils "Wordrush/services/redis/utils"
	"context"
	"strings"
	"time"
)

type RoomRepository struct {
	*entityRepository[redis_models.Room, *redis_models.Room]
}

func NewRoomRepository(store Store, ttl time.Duration) *RoomRepository {
	return &RoomRepository{newEntityRepository[redis_models.Room, *redis_models.Room](
		store, "Room", redis_utils.FormatRoomKey(""), redis_utils.ActiveRoomsKey, ttl)}
}

// ListAvailable returns the rooms players can still join
func (r *RoomRepository) ListAvailable(ctx context.Context) ([]*redis_models.Room, error) {
	rooms, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]*redis_models.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.Status == redis_models.RoomWaiting {
			available = append(available, room)
		}
	}
	return available, nil
}

type TeamRepository struct {
	*entityRepository[redis_models.Team, *redis_models.Team]
}

func NewTeamRepository(store Store, ttl time.Duration) *TeamRepository {
	return &TeamRepository{newEntityRepository[redis_models.Team, *redis_models.Team](
		store, "Team", redis_utils.FormatTeamKey(""), redis_utils.ActiveTeamsKey, ttl)}
}

// ListStandalone returns the chat teams that are not bound to a room
func (r *TeamRepository) ListStandalone(ctx context.Context) ([]*redis_models.Team, error) {
	teams, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*redis_models.Team, 0, len(teams))
	for _, team := range teams {
		if team.RoomID == "" {
			out = append(out, team)
		}
	}
	return out, nil
}

type GameRepository struct {
	*entityRepository[redis_models.Game, *redis_models.Game]
}

func NewGameRepository(store Store, ttl time.Duration) *GameRepository {
	return &GameRepository{newEntityRepository[redis_models.Game, *redis_models.Game](
		store, "Game", redis_utils.FormatGameKey(""), redis_utils.ActiveGamesKey, ttl)}
}

// FindByRoom returns the most recent game of the room, or nil
func (r *GameRepository) FindByRoom(ctx context.Context, roomID string) (*redis_models.Game, error) {
	games, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var latest *redis_models.Game
	for _, game := range games {
		if game.RoomID != roomID {
			continue
		}
		if latest == nil || game.CreatedAt.After(latest.CreatedAt) {
			latest = game
		}
	}
	return latest, nil
}

type ScoreTeamRepository struct {
	*entityRepository[redis_models.ScoreTeam, *redis_models.ScoreTeam]
}

func NewScoreTeamRepository(store Store, ttl time.Duration) *ScoreTeamRepository {
	repo := newEntityRepository[redis_models.ScoreTeam, *redis_models.ScoreTeam](
		store, "Team score", redis_utils.FormatScoreTeamKey(""), redis_utils.ActiveScoreTeamsKey, ttl)
	repo.validID = scoreTeamID
	return &ScoreTeamRepository{repo}
}

// scoreTeamID accepts "<roomId>:<teamId>" ids
func scoreTeamID(id string) bool {
	parts := strings.Split(id, ":")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

func (r *ScoreTeamRepository) GetFor(ctx context.Context, roomID, teamID string) (*redis_models.ScoreTeam, error) {
	return r.Get(ctx, redis_models.ScoreTeamID(roomID, teamID))
}

func (r *ScoreTeamRepository) DeleteFor(ctx context.Context, roomID, teamID string) error {
	return r.Delete(ctx, redis_models.ScoreTeamID(roomID, teamID))
}

func (r *ScoreTeamRepository) ListByRoom(ctx context.Context, roomID string) ([]*redis_models.ScoreTeam, error) {
	scores, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*redis_models.ScoreTeam, 0, len(scores))
	for _, score := range scores {
		if score.RoomID == roomID {
			out = append(out, score)
		}
	}
	return out, nil
}
