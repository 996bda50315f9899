package redis

import "time"

type SessionRole struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

// SessionData is the identity snapshot stored under a session token. It is
// never modified after creation.
type SessionData struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Username  string      `json:"username,omitempty"`
	Role      SessionRole `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}
