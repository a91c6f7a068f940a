package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into a 500. Once a stream has started
// writing there is no status left to send, so the connection is just ended.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}

			event := log.Error().
				Interface("panic", r).
				Str("request_id", RequestIDFrom(c)).
				Str("path", c.FullPath()).
				Bytes("stack", debug.Stack())
			if id, ok := CurrentIdentity(c); ok {
				event = event.Str("user_id", id.UserID)
			}
			event.Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		}()
		c.Next()
	}
}
