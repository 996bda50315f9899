package middleware

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/session"
	"Wordrush/utils"
	"Wordrush/utils/apperrors"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey = "session"
	tokenKey   = "session_token"
)

// TokenFromRequest reads the session cookie, falling back to an
// Authorization: Bearer header
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// AuthRequired checks the session and slides its expiry
func AuthRequired(sessions *session.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c, cookieName)
		if token == "" {
			utils.Fail(c, apperrors.ErrUnauthorized)
			return
		}
		data, err := sessions.VerifyAndExtend(c.Request.Context(), token)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.Set(sessionKey, data)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireMinPriority lets through sessions whose role priority is at most
// minPriority. Must run after AuthRequired.
func RequireMinPriority(minPriority int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.HasMinPriority(SessionFrom(c), minPriority) {
			utils.Fail(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session AuthRequired stored, nil when absent
func SessionFrom(c *gin.Context) *redis_models.SessionData {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	data, _ := value.(*redis_models.SessionData)
	return data
}

func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}
