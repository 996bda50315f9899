package games

import (
	game_constants "Wordrush/constants/game"
	"Wordrush/models"
	redis_models "Wordrush/models/redis"
	redis_utils "Wordrush/services/redis/utils"
	"Wordrush/services/repository"
	"Wordrush/services/rooms"
	"Wordrush/services/socket_io/events"
	socketio_types "Wordrush/services/socket_io/types"
	"Wordrush/utils/apperrors"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// ResultRecorder receives the outcome of finished games
type ResultRecorder interface {
	InitRoom(ctx context.Context, roomID string, teamIDs []string) error
	RecordGameResult(ctx context.Context, roomID string, teamIDs, winners []string) error
}

type Service struct {
	games       *repository.GameRepository
	rooms       *repository.RoomRepository
	teams       *repository.TeamRepository
	results     ResultRecorder
	locker      Locker
	broadcaster *socketio_types.Broadcaster
	policy      redis_models.ScorePolicy
}

func NewService(games *repository.GameRepository, rooms *repository.RoomRepository, teams *repository.TeamRepository,
	results ResultRecorder, locker Locker, broadcaster *socketio_types.Broadcaster, policy redis_models.ScorePolicy) *Service {
	return &Service{
		games:       games,
		rooms:       rooms,
		teams:       teams,
		results:     results,
		locker:      locker,
		broadcaster: broadcaster,
		policy:      policy,
	}
}

func lockKey(gameID string) string {
	return redis_utils.FormatLockKey(redis_utils.FormatGameKey(gameID))
}

// StartGame creates the game of a waiting room. The room needs at least
// two teams and one player; its host is the only one allowed to start.
func (s *Service) StartGame(ctx context.Context, roomID, callerID string) (models.Game, error) {
	var (
		game    *redis_models.Game
		roomDTO models.Room
	)
	err := s.locker.WithLock(ctx, rooms.LockKey(roomID), func() error {
		room, err := s.rooms.MustGet(ctx, roomID)
		if err != nil {
			return err
		}
		if !room.IsOpen() {
			return apperrors.ErrRoomNotWaiting.WithMessage("Cannot start a room in status %s", room.Status)
		}
		if !room.IsHost(callerID) {
			return apperrors.ErrForbidden.WithMessage("Only the host can start the game")
		}
		if len(room.TeamIDs) < game_constants.MIN_TEAMS_TO_START {
			return apperrors.ErrNotEnoughTeams
		}
		if len(room.PlayerIDs) < game_constants.MIN_PLAYERS_TO_START {
			return apperrors.ErrNoPlayers
		}
		rosters, err := s.rosters(ctx, room)
		if err != nil {
			return err
		}
		if err := room.StartGame(); err != nil {
			return err
		}

		game = redis_models.NewGame(uuid.NewString(), room, rosters)
		if err := game.Start(); err != nil {
			return err
		}
		if err := s.games.Save(ctx, game); err != nil {
			return err
		}
		if err := s.rooms.Save(ctx, room); err != nil {
			return err
		}
		roomDTO = models.RoomOf(room)
		return s.results.InitRoom(ctx, roomID, room.TeamIDs)
	})
	if err != nil {
		return models.Game{}, err
	}

	dto := models.GameOf(game)
	group := socketio_types.RoomGroup(roomID)
	s.broadcaster.EmitToGroup(group, events.RoomStartedPayload{Room: roomDTO, GameID: game.ID})
	s.broadcaster.EmitToGroup(group, events.GameStartedPayload{Game: dto})
	log.Info().Str("room_id", roomID).Str("game_id", game.ID).Msg("[GAME] Game started")
	return dto, nil
}

// rosters reads the members of every team of the room
func (s *Service) rosters(ctx context.Context, room *redis_models.Room) (map[string][]string, error) {
	rosters := make(map[string][]string, len(room.TeamIDs))
	for _, teamID := range room.TeamIDs {
		team, err := s.teams.Get(ctx, teamID)
		if err != nil {
			return nil, err
		}
		if team != nil {
			rosters[teamID] = team.Members
		}
	}
	return rosters, nil
}

// withGame loads the game under its lock and checks the caller plays in it
func (s *Service) withGame(ctx context.Context, gameID, callerID string, fn func(game *redis_models.Game) error) error {
	return s.locker.WithLock(ctx, lockKey(gameID), func() error {
		game, err := s.games.MustGet(ctx, gameID)
		if err != nil {
			return err
		}
		if !isPlayer(game, callerID) {
			return apperrors.ErrForbidden.WithMessage("Not a player of this game")
		}
		if err := fn(game); err != nil {
			return err
		}
		return s.games.Save(ctx, game)
	})
}

func isPlayer(game *redis_models.Game, userID string) bool {
	for _, id := range game.Players {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *Service) NextTurn(ctx context.Context, gameID, callerID string) (models.Game, error) {
	var game *redis_models.Game
	err := s.withGame(ctx, gameID, callerID, func(g *redis_models.Game) error {
		game = g
		return g.NextTurn()
	})
	if err != nil {
		return models.Game{}, err
	}
	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(game.RoomID), events.GameTurnStartedPayload{
		GameID:   game.ID,
		Turn:     game.CurrentTurn,
		TeamID:   game.CurrentTeamID,
		PlayerID: game.CurrentPlayerID,
	})
	return models.GameOf(game), nil
}

// NextRound advances the round, finishing the game after the last one
func (s *Service) NextRound(ctx context.Context, gameID, callerID string) (models.Game, error) {
	var (
		game     *redis_models.Game
		finished bool
	)
	err := s.withGame(ctx, gameID, callerID, func(g *redis_models.Game) error {
		game = g
		wasEnded := g.IsEnded()
		if err := g.NextRound(); err != nil {
			return err
		}
		finished = !wasEnded && g.IsEnded()
		return nil
	})
	if err != nil {
		return models.Game{}, err
	}
	if finished {
		s.finish(ctx, game)
		return models.GameOf(game), nil
	}
	if !game.IsEnded() {
		s.broadcaster.EmitToGroup(socketio_types.RoomGroup(game.RoomID), events.GameRoundStartedPayload{
			GameID: game.ID,
			Round:  game.CurrentRound,
		})
	}
	return models.GameOf(game), nil
}

func (s *Service) GuessWord(ctx context.Context, gameID, callerID, wordID string) (models.Game, error) {
	if err := validateWordID(wordID); err != nil {
		return models.Game{}, err
	}
	var (
		game   *redis_models.Game
		teamID string
	)
	err := s.withGame(ctx, gameID, callerID, func(g *redis_models.Game) error {
		game = g
		teamID = g.CurrentTeamID
		return g.GuessWord(wordID, game_constants.POINTS_PER_GUESSED_WORD, s.policy)
	})
	if err != nil {
		return models.Game{}, err
	}
	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(game.RoomID), events.GameWordGuessedPayload{
		GameID: game.ID,
		WordID: wordID,
		TeamID: teamID,
		Score:  game.Scores[teamID],
	})
	return models.GameOf(game), nil
}

func (s *Service) SkipWord(ctx context.Context, gameID, callerID, wordID string) (models.Game, error) {
	if err := validateWordID(wordID); err != nil {
		return models.Game{}, err
	}
	var game *redis_models.Game
	err := s.withGame(ctx, gameID, callerID, func(g *redis_models.Game) error {
		game = g
		return g.SkipWord(wordID)
	})
	if err != nil {
		return models.Game{}, err
	}
	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(game.RoomID), events.GameWordSkippedPayload{GameID: game.ID, WordID: wordID})
	return models.GameOf(game), nil
}

func validateWordID(wordID string) error {
	if strings.TrimSpace(wordID) == "" {
		return apperrors.Validation("Invalid word", apperrors.FieldError{Field: "word_id", Message: "is required"})
	}
	return nil
}

func (s *Service) Pause(ctx context.Context, gameID, callerID string) (models.Game, error) {
	var game *redis_models.Game
	err := s.withGame(ctx, gameID, callerID, func(g *redis_models.Game) error {
		game = g
		return g.Pause()
	})
	if err != nil {
		return models.Game{}, err
	}
	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(game.RoomID), events.GamePausedPayload{GameID: game.ID})
	return models.GameOf(game), nil
}

func (s *Service) Resume(ctx context.Context, gameID, callerID string) (models.Game, error) {
	var game *redis_models.Game
	err := s.withGame(ctx, gameID, callerID, func(g *redis_models.Game) error {
		game = g
		return g.Resume()
	})
	if err != nil {
		return models.Game{}, err
	}
	s.broadcaster.EmitToGroup(socketio_types.RoomGroup(game.RoomID), events.GameResumedPayload{GameID: game.ID})
	return models.GameOf(game), nil
}

// EndGame stops a game in any state but ended
func (s *Service) EndGame(ctx context.Context, gameID, callerID string) (models.Game, error) {
	var game *redis_models.Game
	err := s.withGame(ctx, gameID, callerID, func(g *redis_models.Game) error {
		if g.IsEnded() {
			return apperrors.IllegalTransition(string(g.Status), string(redis_models.GameEnded))
		}
		game = g
		g.End()
		return nil
	})
	if err != nil {
		return models.Game{}, err
	}
	s.finish(ctx, game)
	return models.GameOf(game), nil
}

// finish closes the room and records the results of an ended game. The
// game itself is already saved, so failures here are logged and the
// clients are told about the end regardless.
func (s *Service) finish(ctx context.Context, game *redis_models.Game) {
	winners := game.Winners()
	group := socketio_types.RoomGroup(game.RoomID)

	var roomDTO *models.Room
	err := s.locker.WithLock(ctx, rooms.LockKey(game.RoomID), func() error {
		room, err := s.rooms.Get(ctx, game.RoomID)
		if err != nil || room == nil {
			return err
		}
		if err := room.EndGame(); err != nil {
			return err
		}
		if err := s.rooms.Save(ctx, room); err != nil {
			return err
		}
		dto := models.RoomOf(room)
		roomDTO = &dto
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("room_id", game.RoomID).Str("game_id", game.ID).Msg("[GAME-ERROR] Error ending room")
	}

	if err := s.results.RecordGameResult(ctx, game.RoomID, game.Teams, winners); err != nil {
		log.Error().Err(err).Str("game_id", game.ID).Msg("[GAME-ERROR] Error recording game result")
	}

	s.broadcaster.EmitToGroup(group, events.GameEndedPayload{Game: models.GameOf(game), Winners: winners})
	if roomDTO != nil {
		s.broadcaster.EmitToGroup(group, events.RoomEndedPayload{Room: *roomDTO})
	}
	log.Info().Str("game_id", game.ID).Strs("winners", winners).Msg("[GAME] Game ended")
}

func (s *Service) GetGame(ctx context.Context, gameID string) (models.Game, error) {
	game, err := s.games.MustGet(ctx, gameID)
	if err != nil {
		return models.Game{}, err
	}
	return models.GameOf(game), nil
}

func (s *Service) ListGames(ctx context.Context) ([]models.Game, error) {
	games, err := s.games.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return models.GamesOf(games), nil
}

// GameOfRoom returns the latest game played in the room
func (s *Service) GameOfRoom(ctx context.Context, roomID string) (models.Game, error) {
	game, err := s.games.FindByRoom(ctx, roomID)
	if err != nil {
		return models.Game{}, err
	}
	if game == nil {
		return models.Game{}, apperrors.NotFound("Game")
	}
	return models.GameOf(game), nil
}
