package redis

import (
	"Wordrush/utils/apperrors"
	"sort"
)

type GameStatus string

const (
	GameIdle    GameStatus = "idle"
	GamePlaying GameStatus = "playing"
	GamePaused  GameStatus = "paused"
	GameEnded   GameStatus = "ended"
)

// ScorePolicy decides in which states AddScore is accepted
type ScorePolicy int

const (
	// ScoreAlways accepts score changes in every state, late corrections included
	ScoreAlways ScorePolicy = iota
	// ScorePlayingOnly rejects score changes unless the game is playing
	ScorePlayingOnly
)

// Game is one match of a room. Rosters are the team members when the game
// started, in join order, and LastPlayers holds who last acted for each
// team.
type Game struct {
	ID              string              `json:"id"`
	RoomID          string              `json:"room_id"`
	Teams           []string            `json:"teams"`
	Players         []string            `json:"players"`
	Rosters         map[string][]string `json:"rosters"`
	LastPlayers     map[string]string   `json:"last_players"`
	Config          RoomConfig          `json:"config"`
	Status          GameStatus          `json:"status"`
	CurrentRound    int                 `json:"current_round"`
	CurrentTurn     int                 `json:"current_turn"`
	CurrentTeamID   string              `json:"current_team_id"`
	CurrentPlayerID string              `json:"current_player_id"`
	UsedWordIDs     []string            `json:"used_word_ids"`
	Scores          map[string]int      `json:"scores"`
	Timestamps
}

// NewGame builds an idle game for the room, copying its config and the
// members of each of its teams
func NewGame(id string, room *Room, rosters map[string][]string) *Game {
	teams := append([]string{}, room.TeamIDs...)
	scores := make(map[string]int, len(teams))
	snapshot := make(map[string][]string, len(teams))
	for _, teamID := range teams {
		scores[teamID] = 0
		snapshot[teamID] = append([]string{}, rosters[teamID]...)
	}
	return &Game{
		ID:          id,
		RoomID:      room.ID,
		Teams:       teams,
		Players:     append([]string{}, room.PlayerIDs...),
		Rosters:     snapshot,
		LastPlayers: make(map[string]string, len(teams)),
		Config:      room.Config,
		Status:      GameIdle,
		UsedWordIDs: []string{},
		Scores:      scores,
		Timestamps:  newTimestamps(Now()),
	}
}

func (g *Game) StoreID() string {
	return g.ID
}

func (g *Game) IsEnded() bool {
	return g.Status == GameEnded
}

// Start hands the first turn to the first team and its first member
func (g *Game) Start() error {
	if g.Status != GameIdle {
		return apperrors.IllegalTransition(string(g.Status), string(GamePlaying))
	}
	g.Status = GamePlaying
	g.CurrentRound = 1
	g.CurrentTurn = 1
	g.CurrentTeamID = ""
	if len(g.Teams) > 0 {
		g.CurrentTeamID = g.Teams[0]
	}
	g.CurrentPlayerID = g.nextPlayerOf(g.CurrentTeamID)
	g.Touch(Now())
	return nil
}

// NextRound advances the round. Going past the configured rounds ends the
// game; an ended game is left untouched.
func (g *Game) NextRound() error {
	if g.Status == GameEnded {
		return nil
	}
	if g.Status != GamePlaying {
		return apperrors.ErrGameNotPlaying
	}
	g.CurrentRound++
	g.CurrentTurn = 1
	if g.CurrentRound > g.Config.Rounds {
		g.Status = GameEnded
	}
	g.Touch(Now())
	return nil
}

// NextTurn passes the turn to the next team. Within a team, members take
// turns in join order.
func (g *Game) NextTurn() error {
	if g.Status != GamePlaying {
		return apperrors.ErrGameNotPlaying
	}
	g.CurrentTurn++
	g.CurrentTeamID = nextInRotation(g.Teams, g.CurrentTeamID)
	g.CurrentPlayerID = g.nextPlayerOf(g.CurrentTeamID)
	g.Touch(Now())
	return nil
}

// nextPlayerOf picks the member after the one who last acted for the team.
// A team without members has no player.
func (g *Game) nextPlayerOf(teamID string) string {
	roster := g.Rosters[teamID]
	if len(roster) == 0 {
		return ""
	}
	player := nextInRotation(roster, g.LastPlayers[teamID])
	if g.LastPlayers == nil {
		g.LastPlayers = make(map[string]string)
	}
	g.LastPlayers[teamID] = player
	return player
}

func nextInRotation(list []string, current string) string {
	if len(list) == 0 {
		return ""
	}
	for i, v := range list {
		if v == current {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

// AddScore adds points to a team. It never changes the game status.
func (g *Game) AddScore(teamID string, points int, policy ScorePolicy) error {
	if policy == ScorePlayingOnly && g.Status != GamePlaying {
		return apperrors.ErrGameNotPlaying
	}
	if points < 0 {
		return apperrors.Validation("Invalid points", apperrors.FieldError{Field: "points", Message: "must not be negative"})
	}
	if g.Scores == nil {
		g.Scores = make(map[string]int)
	}
	g.Scores[teamID] += points
	g.Touch(Now())
	return nil
}

func (g *Game) IsWordUsed(wordID string) bool {
	return containsString(g.UsedWordIDs, wordID)
}

// GuessWord marks the word as used and credits the team holding the turn
func (g *Game) GuessWord(wordID string, points int, policy ScorePolicy) error {
	if g.Status != GamePlaying {
		return apperrors.ErrGameNotPlaying
	}
	if g.IsWordUsed(wordID) {
		return apperrors.Conflict("Word already used")
	}
	if err := g.AddScore(g.CurrentTeamID, points, policy); err != nil {
		return err
	}
	g.UsedWordIDs = append(g.UsedWordIDs, wordID)
	return nil
}

func (g *Game) SkipWord(wordID string) error {
	if g.Status != GamePlaying {
		return apperrors.ErrGameNotPlaying
	}
	if g.IsWordUsed(wordID) {
		return apperrors.Conflict("Word already used")
	}
	g.UsedWordIDs = append(g.UsedWordIDs, wordID)
	g.Touch(Now())
	return nil
}

func (g *Game) Pause() error {
	if g.Status != GamePlaying {
		return apperrors.IllegalTransition(string(g.Status), string(GamePaused))
	}
	g.Status = GamePaused
	g.Touch(Now())
	return nil
}

func (g *Game) Resume() error {
	if g.Status != GamePaused {
		return apperrors.IllegalTransition(string(g.Status), string(GamePlaying))
	}
	g.Status = GamePlaying
	g.Touch(Now())
	return nil
}

// End forces the game to ended from any state
func (g *Game) End() {
	g.Status = GameEnded
	g.Touch(Now())
}

// Winners returns the teams sharing the top score, sorted by id. Every
// team is a winner when all scores are equal.
func (g *Game) Winners() []string {
	best := -1
	var winners []string
	for _, teamID := range g.Teams {
		score := g.Scores[teamID]
		switch {
		case score > best:
			best = score
			winners = []string{teamID}
		case score == best:
			winners = append(winners, teamID)
		}
	}
	sort.Strings(winners)
	return winners
}
