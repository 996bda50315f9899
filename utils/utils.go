package utils

import (
	"Wordrush/utils/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorHandler renders the last error a handler attached to the context.
// Unexpected errors are logged in full and masked in the response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		if apperrors.KindOf(err) == apperrors.KindUnexpected {
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("[HTTP-ERROR] Unexpected error")
		}
		c.JSON(apperrors.StatusCode(err), apperrors.Serialize(err))
	}
}

// Fail attaches err for ErrorHandler and stops the chain
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
