package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format string every time, potentially confusing the key format.
 */

import "fmt"

const (
	ActiveRoomsKey      = "rooms:active"
	ActiveTeamsKey      = "teams:active"
	ActiveGamesKey      = "games:active"
	ActiveScoreTeamsKey = "score-teams:active"
)

func FormatSessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func FormatRoomKey(roomId string) string {
	return fmt.Sprintf("room:%s", roomId)
}

func FormatTeamKey(teamId string) string {
	return fmt.Sprintf("team:%s", teamId)
}

func FormatGameKey(gameId string) string {
	return fmt.Sprintf("game:%s", gameId)
}

// FormatScoreTeamKey takes the "<roomId>:<teamId>" store id of a ScoreTeam
func FormatScoreTeamKey(scoreId string) string {
	return fmt.Sprintf("score-team:%s", scoreId)
}

func FormatTeamChatKey(teamId string) string {
	return fmt.Sprintf("team:%s:messages", teamId)
}

func FormatRoomTeamChatKey(roomId string, teamId string) string {
	return fmt.Sprintf("room:%s:team:%s:chat", roomId, teamId)
}

func FormatLockKey(entityKey string) string {
	return fmt.Sprintf("lock:%s", entityKey)
}
