package redis

import (
	"Wordrush/utils/apperrors"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig(max int) RoomConfig {
	cfg := DefaultRoomConfig()
	cfg.MinPlayers = 2
	cfg.MaxPlayers = max
	return cfg
}

func TestNewRoomHostJoins(t *testing.T) {
	room, err := NewRoom("r1", "  Friday night ", "host", DefaultRoomConfig())
	require.NoError(t, err)

	assert.Equal(t, "Friday night", room.Name)
	assert.Equal(t, []string{"host"}, room.PlayerIDs)
	assert.Equal(t, RoomWaiting, room.Status)
	assert.True(t, room.IsHost("host"))
}

func TestNewRoomValidation(t *testing.T) {
	tests := []struct {
		name   string
		room   string
		config RoomConfig
		field  string
	}{
		{"short name", "ab", DefaultRoomConfig(), "name"},
		{"max players too high", "valid", RoomConfig{MinPlayers: 2, MaxPlayers: 11, Rounds: 1, TurnDurationSec: 10, WordsPerRound: 1}, "max_players"},
		{"turn too short", "valid", RoomConfig{MinPlayers: 2, MaxPlayers: 4, Rounds: 1, TurnDurationSec: 5, WordsPerRound: 1}, "turn_duration_sec"},
		{"min above max", "valid", RoomConfig{MinPlayers: 5, MaxPlayers: 4, Rounds: 1, TurnDurationSec: 10, WordsPerRound: 1}, "min_players"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoom("r1", tt.room, "host", tt.config)
			require.Error(t, err)

			var appErr *apperrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperrors.KindValidation, appErr.Kind)
			require.NotEmpty(t, appErr.Fields)
			assert.Equal(t, tt.field, appErr.Fields[0].Field)
		})
	}
}

func TestRoomFullScenario(t *testing.T) {
	room, err := NewRoom("r1", "Room", "p1", smallConfig(2))
	require.NoError(t, err)

	require.NoError(t, room.AddPlayer("p2"))
	assert.Equal(t, RoomLocked, room.Status)

	before := append([]string{}, room.PlayerIDs...)
	err = room.AddPlayer("p3")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
	assert.Equal(t, before, room.PlayerIDs)
	assert.LessOrEqual(t, len(room.PlayerIDs), room.Config.MaxPlayers)
}

func TestRoomRejectsDuplicatePlayer(t *testing.T) {
	room, err := NewRoom("r1", "Room", "p1", smallConfig(4))
	require.NoError(t, err)

	assert.ErrorIs(t, room.AddPlayer("p1"), apperrors.ErrPlayerAlreadyInRoom)
	assert.Len(t, room.PlayerIDs, 1)
}

func TestRemovePlayerIsIdempotent(t *testing.T) {
	room, err := NewRoom("r1", "Room", "p1", smallConfig(2))
	require.NoError(t, err)
	require.NoError(t, room.AddPlayer("p2"))

	room.RemovePlayer("p2")
	once := *room
	once.PlayerIDs = append([]string{}, room.PlayerIDs...)

	room.RemovePlayer("p2")
	assert.Equal(t, once.PlayerIDs, room.PlayerIDs)
	assert.Equal(t, once.Status, room.Status)
	assert.Equal(t, once.HostID, room.HostID)
	assert.Equal(t, RoomWaiting, room.Status)
}

func TestRemoveHostHandsOver(t *testing.T) {
	room, err := NewRoom("r1", "Room", "p1", smallConfig(4))
	require.NoError(t, err)
	require.NoError(t, room.AddPlayer("p2"))

	room.RemovePlayer("p1")
	assert.Equal(t, "p2", room.HostID)

	room.RemovePlayer("p2")
	assert.True(t, room.IsEmpty())
	assert.Empty(t, room.HostID)
}

func TestRoomStartGame(t *testing.T) {
	room, err := NewRoom("r1", "Room", "p1", smallConfig(4))
	require.NoError(t, err)

	assert.ErrorIs(t, room.StartGame(), apperrors.ErrNotEnoughPlayers)

	require.NoError(t, room.AddPlayer("p2"))
	require.NoError(t, room.StartGame())
	assert.Equal(t, RoomPlaying, room.Status)

	err = room.StartGame()
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)

	require.NoError(t, room.EndGame())
	assert.Equal(t, RoomEnded, room.Status)
	assert.ErrorIs(t, room.EndGame(), apperrors.ErrIllegalTransition)
}

func TestLockedRoomCanStart(t *testing.T) {
	room, err := NewRoom("r1", "Room", "p1", smallConfig(2))
	require.NoError(t, err)
	require.NoError(t, room.AddPlayer("p2"))
	require.Equal(t, RoomLocked, room.Status)

	assert.NoError(t, room.StartGame())
}

func TestRoomMutationsBlockedOncePlaying(t *testing.T) {
	room, err := NewRoom("r1", "Room", "p1", smallConfig(4))
	require.NoError(t, err)
	require.NoError(t, room.AddTeam("t1"))
	assert.ErrorIs(t, room.AddTeam("t1"), apperrors.ErrTeamAlreadyInRoom)
	require.NoError(t, room.AddPlayer("p2"))
	require.NoError(t, room.StartGame())

	assert.ErrorIs(t, room.Rename("Other"), apperrors.ErrRoomNotWaiting)
	assert.ErrorIs(t, room.AddTeam("t2"), apperrors.ErrRoomNotWaiting)
	assert.ErrorIs(t, room.RemoveTeam("t1"), apperrors.ErrRoomNotWaiting)
	assert.ErrorIs(t, room.AddPlayer("p3"), apperrors.ErrRoomNotWaiting)
	assert.Equal(t, []string{"t1"}, room.TeamIDs)
}
