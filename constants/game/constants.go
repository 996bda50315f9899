package game_constants

import "time"

// Room configuration bounds
const (
	MIN_PLAYERS_LOWER      = 2
	MAX_PLAYERS_UPPER      = 10
	MIN_ROUNDS             = 1
	MAX_ROUNDS             = 10
	MIN_TURN_DURATION_SEC  = 10
	MAX_TURN_DURATION_SEC  = 60
	MIN_WORDS_PER_ROUND    = 1
	MAX_WORDS_PER_ROUND    = 10
	MIN_ROOM_NAME_LENGTH   = 3
	MAX_ROOM_NAME_LENGTH   = 50
	MIN_TEAM_NAME_LENGTH   = 3
	MAX_TEAM_NAME_LENGTH   = 50
	MIN_TEAMS_TO_START     = 2
	MIN_PLAYERS_TO_START   = 1
)

const POINTS_PER_GUESSED_WORD = 1

// Room defaults used when a create request leaves the config out
const (
	DEFAULT_MAX_PLAYERS       = 8
	DEFAULT_MIN_PLAYERS       = 2
	DEFAULT_ROUNDS            = 3
	DEFAULT_TURN_DURATION_SEC = 60
	DEFAULT_WORDS_PER_ROUND   = 5
)

// Chat
const (
	MIN_MESSAGE_LENGTH         = 1
	MAX_MESSAGE_LENGTH         = 2000
	MIN_CHAT_CAP               = 50
	MAX_CHAT_CAP               = 500
	DEFAULT_TEAM_CHAT_CAP      = 500
	DEFAULT_ROOM_TEAM_CHAT_CAP = 50
	DEFAULT_HISTORY_LIMIT      = 50
	MAX_HISTORY_LIMIT          = 200
)

// TTLs
const (
	DEFAULT_ENTITY_TTL  = 2 * time.Hour
	DEFAULT_SESSION_TTL = time.Hour
)

// Role priorities. Lower value means more privilege.
const (
	ADMIN_ROLE_PRIORITY   = 1
	DEFAULT_ROLE_PRIORITY = 10
	DEFAULT_ROLE_NAME     = "player"
)
