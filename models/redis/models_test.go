package redis

import (
	"Wordrush/utils/apperrors"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamMembership(t *testing.T) {
	team, err := NewTeam("t1", "Blue team", "u1", "")
	require.NoError(t, err)

	assert.ErrorIs(t, team.AddMember("u1"), apperrors.ErrAlreadyInTeam)
	require.NoError(t, team.AddMember("u2"))

	team.RemoveMember("u1")
	assert.Equal(t, "u2", team.HostID)
	team.RemoveMember("u1")
	assert.Equal(t, []string{"u2"}, team.Members)

	team.RemoveMember("u2")
	assert.True(t, team.IsEmpty())

	_, err = NewTeam("t2", "ab", "u1", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestScoreTeamApply(t *testing.T) {
	score := NewScoreTeam("s1", "r1", "t1")
	wins, draws := 3, 1

	require.NoError(t, score.Apply(ScoreUpdate{Wins: &wins, Draws: &draws}))
	assert.Equal(t, 3, score.Wins)
	assert.Equal(t, 0, score.Losses)
	assert.Equal(t, 1, score.Draws)

	wins = 1
	require.NoError(t, score.Apply(ScoreUpdate{Wins: &wins}))
	assert.Equal(t, 1, score.Wins)

	negative := -1
	err := score.Apply(ScoreUpdate{Losses: &negative})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 0, score.Losses)
	assert.Equal(t, "r1:t1", score.StoreID())
}

func TestChatMessageValidation(t *testing.T) {
	_, err := NewUserMessage("t1", "u1", "alice", "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = NewUserMessage("t1", "u1", "alice", strings.Repeat("a", 2001))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = NewUserMessage("t1", "u1", "alice", "bad \xff\xfe bytes")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	msg, err := NewUserMessage("t1", "u1", "alice", strings.Repeat("a", 2000))
	require.NoError(t, err)
	assert.False(t, msg.IsSystem())
	assert.Len(t, msg.ID, 26)

	// Multi-byte text is measured in characters and survives encoding
	accented, err := NewUserMessage("t1", "u1", "alice", strings.Repeat("é", 2000))
	require.NoError(t, err)
	raw, err := json.Marshal(accented)
	require.NoError(t, err)
	var decoded ChatMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, accented.Text, decoded.Text)

	system := NewSystemMessage("t1", "alice joined")
	assert.True(t, system.IsSystem())
	assert.Equal(t, MessageSystem, system.Type)
}

func TestEntityRoundTrip(t *testing.T) {
	Now = func() time.Time { return time.Date(2025, 3, 1, 12, 30, 0, 123000000, time.FixedZone("CET", 3600)) }
	defer func() { Now = time.Now }()

	room, err := NewRoom("r1", "Room", "p1", DefaultRoomConfig())
	require.NoError(t, err)
	require.NoError(t, room.AddTeam("t1"))
	game := NewGame("g1", room, map[string][]string{"t1": {"p1"}})
	require.NoError(t, game.Start())
	team, err := NewTeam("t1", "Team one", "p1", "r1")
	require.NoError(t, err)
	score := NewScoreTeam("s1", "r1", "t1")

	tests := []struct {
		name string
		in   interface{}
		out  interface{}
	}{
		{"room", room, &Room{}},
		{"game", game, &Game{}},
		{"team", team, &Team{}},
		{"score", score, &ScoreTeam{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(data, tt.out))

			if diff := cmp.Diff(tt.in, tt.out, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
