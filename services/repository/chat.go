package repository

import (
	game_constants "Wordrush/constants/game"
	redis_models "Wordrush/models/redis"
	redis_utils "Wordrush/services/redis/utils"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// chatLog is a capped FIFO list of messages. Appending past the cap drops
// the oldest entries.
type chatLog struct {
	store  Store
	maxLen int
	ttl    time.Duration
}

func (c *chatLog) append(ctx context.Context, key string, msg *redis_models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshaling chat message: %w", err)
	}
	return c.store.PushCapped(ctx, key, data, c.maxLen, c.ttl)
}

func (c *chatLog) history(ctx context.Context, key string, limit int) ([]*redis_models.ChatMessage, error) {
	if limit <= 0 {
		limit = game_constants.DEFAULT_HISTORY_LIMIT
	}
	if limit > c.maxLen {
		limit = c.maxLen
	}
	raw, err := c.store.LastN(ctx, key, limit)
	if err != nil {
		return nil, err
	}
	messages := make([]*redis_models.ChatMessage, 0, len(raw))
	for _, data := range raw {
		var msg redis_models.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[CHAT] Skipping corrupt message")
			continue
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

// TeamChatRepository stores the chat of standalone teams
type TeamChatRepository struct {
	log chatLog
}

func NewTeamChatRepository(store Store, maxLen int, ttl time.Duration) *TeamChatRepository {
	return &TeamChatRepository{log: chatLog{store: store, maxLen: maxLen, ttl: ttl}}
}

func (r *TeamChatRepository) Append(ctx context.Context, teamID string, msg *redis_models.ChatMessage) error {
	return r.log.append(ctx, redis_utils.FormatTeamChatKey(teamID), msg)
}

// History returns up to limit of the newest messages, oldest first
func (r *TeamChatRepository) History(ctx context.Context, teamID string, limit int) ([]*redis_models.ChatMessage, error) {
	return r.log.history(ctx, redis_utils.FormatTeamChatKey(teamID), limit)
}

func (r *TeamChatRepository) Clear(ctx context.Context, teamID string) error {
	return r.log.store.Del(ctx, redis_utils.FormatTeamChatKey(teamID))
}

// RoomTeamChatRepository stores the chat of a team inside a room
type RoomTeamChatRepository struct {
	log chatLog
}

func NewRoomTeamChatRepository(store Store, maxLen int, ttl time.Duration) *RoomTeamChatRepository {
	return &RoomTeamChatRepository{log: chatLog{store: store, maxLen: maxLen, ttl: ttl}}
}

func (r *RoomTeamChatRepository) Append(ctx context.Context, roomID, teamID string, msg *redis_models.ChatMessage) error {
	return r.log.append(ctx, redis_utils.FormatRoomTeamChatKey(roomID, teamID), msg)
}

func (r *RoomTeamChatRepository) History(ctx context.Context, roomID, teamID string, limit int) ([]*redis_models.ChatMessage, error) {
	return r.log.history(ctx, redis_utils.FormatRoomTeamChatKey(roomID, teamID), limit)
}

func (r *RoomTeamChatRepository) Clear(ctx context.Context, roomID string, teamIDs ...string) error {
	if len(teamIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		keys = append(keys, redis_utils.FormatRoomTeamChatKey(roomID, teamID))
	}
	return r.log.store.Del(ctx, keys...)
}
