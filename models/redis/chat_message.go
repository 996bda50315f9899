package redis

import (
	game_constants "Wordrush/constants/game"
	"Wordrush/utils/apperrors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

type MessageType string

const (
	MessageUser   MessageType = "user"
	MessageSystem MessageType = "system"
)

// ChatMessage is an entry of a team (or room-team) chat. System messages
// have no author.
type ChatMessage struct {
	ID         string      `json:"id"`
	ScopeID    string      `json:"scope_id"`
	Type       MessageType `json:"type"`
	AuthorID   *string     `json:"author_id"`
	AuthorName string      `json:"author_name,omitempty"`
	Text       string      `json:"text"`
	Timestamp  time.Time   `json:"timestamp"`
}

// ValidateMessageText accepts valid UTF-8 of bounded length once trimmed
func ValidateMessageText(text string) error {
	if !utf8.ValidString(text) {
		return apperrors.Validation("Invalid message", apperrors.FieldError{
			Field:   "text",
			Message: "must be valid UTF-8",
		})
	}
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < game_constants.MIN_MESSAGE_LENGTH || n > game_constants.MAX_MESSAGE_LENGTH {
		return apperrors.Validation("Invalid message", apperrors.FieldError{
			Field:   "text",
			Message: fmt.Sprintf("must be between %d and %d characters", game_constants.MIN_MESSAGE_LENGTH, game_constants.MAX_MESSAGE_LENGTH),
		})
	}
	return nil
}

func NewUserMessage(scopeID, authorID, authorName, text string) (*ChatMessage, error) {
	if err := ValidateMessageText(text); err != nil {
		return nil, err
	}
	now := Now().UTC()
	return &ChatMessage{
		ID:         ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		ScopeID:    scopeID,
		Type:       MessageUser,
		AuthorID:   &authorID,
		AuthorName: authorName,
		Text:       strings.TrimSpace(text),
		Timestamp:  now,
	}, nil
}

func NewSystemMessage(scopeID, text string) *ChatMessage {
	now := Now().UTC()
	return &ChatMessage{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		ScopeID:   scopeID,
		Type:      MessageSystem,
		Text:      text,
		Timestamp: now,
	}
}

func (m *ChatMessage) IsSystem() bool {
	return m.AuthorID == nil
}
