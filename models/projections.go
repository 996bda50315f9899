package models

/**
 * Public projections of the ephemeral entities. Handlers and controllers
 * only ever send these to clients, never the stored representation.
 */

import (
	"Wordrush/models/postgres"
	redis_models "Wordrush/models/redis"
	"time"
)

type RoomConfig struct {
	MinPlayers      int `json:"min_players"`
	MaxPlayers      int `json:"max_players"`
	Rounds          int `json:"rounds"`
	TurnDurationSec int `json:"turn_duration_sec"`
	WordsPerRound   int `json:"words_per_round"`
}

type Room struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	HostID    string     `json:"host_id"`
	Config    RoomConfig `json:"room_config"`
	PlayerIDs []string   `json:"player_ids"`
	TeamIDs   []string   `json:"team_ids"`
	Status    string     `json:"status"`
	IsFull    bool       `json:"is_full"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

type Team struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	HostID    string   `json:"host_id"`
	RoomID    string   `json:"room_id,omitempty"`
	Members   []string `json:"members"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type Game struct {
	ID              string              `json:"id"`
	RoomID          string              `json:"room_id"`
	Teams           []string            `json:"teams"`
	Rosters         map[string][]string `json:"rosters"`
	Config          RoomConfig          `json:"config"`
	Status          string              `json:"status"`
	CurrentRound    int                 `json:"current_round"`
	CurrentTurn     int                 `json:"current_turn"`
	CurrentTeamID   string              `json:"current_team_id"`
	CurrentPlayerID string              `json:"current_player_id"`
	UsedWordIDs     []string            `json:"used_word_ids"`
	Scores          map[string]int      `json:"scores"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
}

type Score struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	Draws     int    `json:"draws"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ChatMessage struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	AuthorID   *string `json:"author_id"`
	AuthorName string  `json:"author_name,omitempty"`
	Text       string  `json:"text"`
	Timestamp  string  `json:"timestamp"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
}

func isoDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func configOf(c redis_models.RoomConfig) RoomConfig {
	return RoomConfig{
		MinPlayers:      c.MinPlayers,
		MaxPlayers:      c.MaxPlayers,
		Rounds:          c.Rounds,
		TurnDurationSec: c.TurnDurationSec,
		WordsPerRound:   c.WordsPerRound,
	}
}

func RoomOf(r *redis_models.Room) Room {
	return Room{
		ID:        r.ID,
		Name:      r.Name,
		HostID:    r.HostID,
		Config:    configOf(r.Config),
		PlayerIDs: copyStrings(r.PlayerIDs),
		TeamIDs:   copyStrings(r.TeamIDs),
		Status:    string(r.Status),
		IsFull:    r.IsFull(),
		CreatedAt: isoDate(r.CreatedAt),
		UpdatedAt: isoDate(r.UpdatedAt),
	}
}

func RoomsOf(rooms []*redis_models.Room) []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomOf(r))
	}
	return out
}

func TeamOf(t *redis_models.Team) Team {
	return Team{
		ID:        t.ID,
		Name:      t.Name,
		HostID:    t.HostID,
		RoomID:    t.RoomID,
		Members:   copyStrings(t.Members),
		CreatedAt: isoDate(t.CreatedAt),
		UpdatedAt: isoDate(t.UpdatedAt),
	}
}

func TeamsOf(teams []*redis_models.Team) []Team {
	out := make([]Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, TeamOf(t))
	}
	return out
}

func GameOf(g *redis_models.Game) Game {
	scores := make(map[string]int, len(g.Scores))
	for teamID, points := range g.Scores {
		scores[teamID] = nonNegative(points)
	}
	rosters := make(map[string][]string, len(g.Rosters))
	for teamID, members := range g.Rosters {
		rosters[teamID] = copyStrings(members)
	}
	return Game{
		ID:              g.ID,
		RoomID:          g.RoomID,
		Teams:           copyStrings(g.Teams),
		Rosters:         rosters,
		Config:          configOf(g.Config),
		Status:          string(g.Status),
		CurrentRound:    g.CurrentRound,
		CurrentTurn:     g.CurrentTurn,
		CurrentTeamID:   g.CurrentTeamID,
		CurrentPlayerID: g.CurrentPlayerID,
		UsedWordIDs:     copyStrings(g.UsedWordIDs),
		Scores:          scores,
		CreatedAt:       isoDate(g.CreatedAt),
		UpdatedAt:       isoDate(g.UpdatedAt),
	}
}

func GamesOf(games []*redis_models.Game) []Game {
	out := make([]Game, 0, len(games))
	for _, g := range games {
		out = append(out, GameOf(g))
	}
	return out
}

func ScoreTeamOf(s *redis_models.ScoreTeam) Score {
	return Score{
		ID:        s.ID,
		RoomID:    s.RoomID,
		TeamID:    s.TeamID,
		Wins:      nonNegative(s.Wins),
		Losses:    nonNegative(s.Losses),
		Draws:     nonNegative(s.Draws),
		CreatedAt: isoDate(s.CreatedAt),
		UpdatedAt: isoDate(s.UpdatedAt),
	}
}

func ScoreUserOf(s *postgres.ScoreUser) Score {
	return Score{
		ID:        s.ID,
		UserID:    s.UserID,
		Wins:      nonNegative(s.Wins),
		Losses:    nonNegative(s.Losses),
		Draws:     nonNegative(s.Draws),
		CreatedAt: isoDate(s.CreatedAt),
		UpdatedAt: isoDate(s.UpdatedAt),
	}
}

func ChatMessageOf(m *redis_models.ChatMessage) ChatMessage {
	return ChatMessage{
		ID:         m.ID,
		Type:       string(m.Type),
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Text:       m.Text,
		Timestamp:  isoDate(m.Timestamp),
	}
}

func ChatMessagesOf(messages []*redis_models.ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, ChatMessageOf(m))
	}
	return out
}

func UserOfSession(s *redis_models.SessionData) User {
	return User{ID: s.UserID, Email: s.Email, Username: s.Username, Role: s.Role.Name}
}

func UserOf(u *postgres.User) User {
	return User{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role.Name}
}
