package redis

import (
	"Wordrush/utils/apperrors"
	"fmt"
)

// ScoreTeam holds a team's results inside a room
type ScoreTeam struct {
	ID     string `json:"id"`
	RoomID string `json:"room_id"`
	TeamID string `json:"team_id"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Draws  int    `json:"draws"`
	Timestamps
}

func NewScoreTeam(id, roomID, teamID string) *ScoreTeam {
	return &ScoreTeam{
		ID:         id,
		RoomID:     roomID,
		TeamID:     teamID,
		Timestamps: newTimestamps(Now()),
	}
}

// ScoreTeamID is the index member identifying a room/team score
func ScoreTeamID(roomID, teamID string) string {
	return fmt.Sprintf("%s:%s", roomID, teamID)
}

func (s *ScoreTeam) StoreID() string {
	return ScoreTeamID(s.RoomID, s.TeamID)
}

// ScoreUpdate carries absolute values. Nil fields are left unchanged.
type ScoreUpdate struct {
	Wins   *int `json:"wins,omitempty"`
	Losses *int `json:"losses,omitempty"`
	Draws  *int `json:"draws,omitempty"`
}

func (u ScoreUpdate) Validate() error {
	var fields []apperrors.FieldError
	for _, f := range []struct {
		name  string
		value *int
	}{{"wins", u.Wins}, {"losses", u.Losses}, {"draws", u.Draws}} {
		if f.value != nil && *f.value < 0 {
			fields = append(fields, apperrors.FieldError{Field: f.name, Message: "must be greater than or equal to 0"})
		}
	}
	if len(fields) > 0 {
		return apperrors.Validation("Invalid score", fields...)
	}
	return nil
}

// Apply replaces the supplied counters
func (s *ScoreTeam) Apply(u ScoreUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.Wins != nil {
		s.Wins = *u.Wins
	}
	if u.Losses != nil {
		s.Losses = *u.Losses
	}
	if u.Draws != nil {
		s.Draws = *u.Draws
	}
	s.Touch(Now())
	return nil
}
