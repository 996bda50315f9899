package redis

import (
	game_constants "Wordrush/constants/game"
	"Wordrush/utils/apperrors"
	"fmt"
	"strings"
)

type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomLocked  RoomStatus = "locked"
	RoomPlaying RoomStatus = "playing"
	RoomEnded   RoomStatus = "ended"
)

// RoomConfig is copied into the Game when it starts
type RoomConfig struct {
	MinPlayers      int `json:"min_players"`
	MaxPlayers      int `json:"max_players"`
	Rounds          int `json:"rounds"`
	TurnDurationSec int `json:"turn_duration_sec"`
	WordsPerRound   int `json:"words_per_round"`
}

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		MinPlayers:      game_constants.DEFAULT_MIN_PLAYERS,
		MaxPlayers:      game_constants.DEFAULT_MAX_PLAYERS,
		Rounds:          game_constants.DEFAULT_ROUNDS,
		TurnDurationSec: game_constants.DEFAULT_TURN_DURATION_SEC,
		WordsPerRound:   game_constants.DEFAULT_WORDS_PER_ROUND,
	}
}

func (c RoomConfig) Validate() error {
	var fields []apperrors.FieldError
	check := func(field string, value, min, max int) {
		if value < min || value > max {
			fields = append(fields, apperrors.FieldError{
				Field:   field,
				Message: fmt.Sprintf("must be between %d and %d", min, max),
			})
		}
	}
	check("min_players", c.MinPlayers, game_constants.MIN_PLAYERS_LOWER, game_constants.MAX_PLAYERS_UPPER)
	check("max_players", c.MaxPlayers, game_constants.MIN_PLAYERS_LOWER, game_constants.MAX_PLAYERS_UPPER)
	check("rounds", c.Rounds, game_constants.MIN_ROUNDS, game_constants.MAX_ROUNDS)
	check("turn_duration_sec", c.TurnDurationSec, game_constants.MIN_TURN_DURATION_SEC, game_constants.MAX_TURN_DURATION_SEC)
	check("words_per_round", c.WordsPerRound, game_constants.MIN_WORDS_PER_ROUND, game_constants.MAX_WORDS_PER_ROUND)
	if len(fields) == 0 && c.MinPlayers > c.MaxPlayers {
		fields = append(fields, apperrors.FieldError{Field: "min_players", Message: "must not exceed max_players"})
	}
	if len(fields) > 0 {
		return apperrors.Validation("Invalid room config", fields...)
	}
	return nil
}

type Room struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	HostID    string     `json:"host_id"`
	Config    RoomConfig `json:"room_config"`
	PlayerIDs []string   `json:"player_ids"`
	TeamIDs   []string   `json:"team_ids"`
	Status    RoomStatus `json:"status"`
	Timestamps
}

// NewRoom creates a waiting room with the host as its first player
func NewRoom(id, name, hostID string, config RoomConfig) (*Room, error) {
	name = strings.TrimSpace(name)
	if len(name) < game_constants.MIN_ROOM_NAME_LENGTH || len(name) > game_constants.MAX_ROOM_NAME_LENGTH {
		return nil, apperrors.Validation("Invalid room name", apperrors.FieldError{
			Field:   "name",
			Message: fmt.Sprintf("must be between %d and %d characters", game_constants.MIN_ROOM_NAME_LENGTH, game_constants.MAX_ROOM_NAME_LENGTH),
		})
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	room := &Room{
		ID:         id,
		Name:       name,
		HostID:     hostID,
		Config:     config,
		PlayerIDs:  []string{},
		TeamIDs:    []string{},
		Status:     RoomWaiting,
		Timestamps: newTimestamps(Now()),
	}
	if err := room.AddPlayer(hostID); err != nil {
		return nil, err
	}
	return room, nil
}

func (r *Room) StoreID() string {
	return r.ID
}

// IsOpen reports whether the room is still in the pre-game phase
// (waiting, or its full sub-state locked)
func (r *Room) IsOpen() bool {
	return r.Status == RoomWaiting || r.Status == RoomLocked
}

func (r *Room) HasPlayer(playerID string) bool {
	return containsString(r.PlayerIDs, playerID)
}

func (r *Room) HasTeam(teamID string) bool {
	return containsString(r.TeamIDs, teamID)
}

func (r *Room) IsHost(playerID string) bool {
	return r.HostID == playerID
}

func (r *Room) IsEmpty() bool {
	return len(r.PlayerIDs) == 0
}

func (r *Room) IsFull() bool {
	return len(r.PlayerIDs) >= r.Config.MaxPlayers
}

func (r *Room) AddPlayer(playerID string) error {
	if r.HasPlayer(playerID) {
		return apperrors.ErrPlayerAlreadyInRoom
	}
	if !r.IsOpen() {
		return apperrors.ErrRoomNotWaiting
	}
	if r.IsFull() {
		return apperrors.ErrRoomFull
	}
	r.PlayerIDs = append(r.PlayerIDs, playerID)
	r.refreshLock()
	r.Touch(Now())
	return nil
}

// RemovePlayer is a no-op for unknown players. When the host leaves, the
// next player in join order becomes host.
func (r *Room) RemovePlayer(playerID string) {
	var removed bool
	r.PlayerIDs, removed = removeString(r.PlayerIDs, playerID)
	if !removed {
		return
	}
	if r.HostID == playerID {
		r.HostID = ""
		if len(r.PlayerIDs) > 0 {
			r.HostID = r.PlayerIDs[0]
		}
	}
	r.refreshLock()
	r.Touch(Now())
}

// refreshLock evaluates the waiting <-> locked edge
func (r *Room) refreshLock() {
	switch {
	case r.Status == RoomWaiting && r.IsFull():
		r.Status = RoomLocked
	case r.Status == RoomLocked && !r.IsFull():
		r.Status = RoomWaiting
	}
}

func (r *Room) Rename(name string) error {
	if !r.IsOpen() {
		return apperrors.ErrRoomNotWaiting
	}
	name = strings.TrimSpace(name)
	if len(name) < game_constants.MIN_ROOM_NAME_LENGTH || len(name) > game_constants.MAX_ROOM_NAME_LENGTH {
		return apperrors.Validation("Invalid room name", apperrors.FieldError{Field: "name", Message: "invalid length"})
	}
	r.Name = name
	r.Touch(Now())
	return nil
}

func (r *Room) AddTeam(teamID string) error {
	if !r.IsOpen() {
		return apperrors.ErrRoomNotWaiting
	}
	if r.HasTeam(teamID) {
		return apperrors.ErrTeamAlreadyInRoom
	}
	r.TeamIDs = append(r.TeamIDs, teamID)
	r.Touch(Now())
	return nil
}

func (r *Room) RemoveTeam(teamID string) error {
	if !r.IsOpen() {
		return apperrors.ErrRoomNotWaiting
	}
	var removed bool
	if r.TeamIDs, removed = removeString(r.TeamIDs, teamID); removed {
		r.Touch(Now())
	}
	return nil
}

// StartGame moves an open room to playing
func (r *Room) StartGame() error {
	if !r.IsOpen() {
		return apperrors.ErrRoomNotWaiting.WithMessage("Cannot start a room in status %s", r.Status)
	}
	if len(r.PlayerIDs) < r.Config.MinPlayers {
		return apperrors.ErrNotEnoughPlayers
	}
	r.Status = RoomPlaying
	r.Touch(Now())
	return nil
}

func (r *Room) EndGame() error {
	if r.Status != RoomPlaying {
		return apperrors.IllegalTransition(string(r.Status), string(RoomEnded))
	}
	r.Status = RoomEnded
	r.Touch(Now())
	return nil
}
