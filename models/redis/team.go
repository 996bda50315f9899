package redis

import (
	game_constants "Wordrush/constants/game"
	"Wordrush/utils/apperrors"
	"fmt"
	"strings"
)

// Team is either a standalone chat team (RoomID empty) or scoped to a room
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	HostID  string   `json:"host_id"`
	RoomID  string   `json:"room_id,omitempty"`
	Members []string `json:"members"`
	Timestamps
}

// NewTeam creates a team whose host is its first member
func NewTeam(id, name, hostID, roomID string) (*Team, error) {
	name = strings.TrimSpace(name)
	if len(name) < game_constants.MIN_TEAM_NAME_LENGTH || len(name) > game_constants.MAX_TEAM_NAME_LENGTH {
		return nil, apperrors.Validation("Invalid team name", apperrors.FieldError{
			Field:   "name",
			Message: fmt.Sprintf("must be between %d and %d characters", game_constants.MIN_TEAM_NAME_LENGTH, game_constants.MAX_TEAM_NAME_LENGTH),
		})
	}
	return &Team{
		ID:         id,
		Name:       name,
		HostID:     hostID,
		RoomID:     roomID,
		Members:    []string{hostID},
		Timestamps: newTimestamps(Now()),
	}, nil
}

func (t *Team) StoreID() string {
	return t.ID
}

func (t *Team) HasMember(userID string) bool {
	return containsString(t.Members, userID)
}

func (t *Team) AddMember(userID string) error {
	if t.HasMember(userID) {
		return apperrors.ErrAlreadyInTeam
	}
	t.Members = append(t.Members, userID)
	t.Touch(Now())
	return nil
}

// RemoveMember is idempotent. The host role moves to the next member.
func (t *Team) RemoveMember(userID string) {
	var removed bool
	if t.Members, removed = removeString(t.Members, userID); !removed {
		return
	}
	if t.HostID == userID {
		t.HostID = ""
		if len(t.Members) > 0 {
			t.HostID = t.Members[0]
		}
	}
	t.Touch(Now())
}

func (t *Team) IsEmpty() bool {
	return len(t.Members) == 0
}
