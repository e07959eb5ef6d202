package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/followups/pkg/errors"
	"github.com/jwalitptl/followups/pkg/httputil"
)

// ErrorHandler logs errors attached to the context. Handlers normally
// render their own error; anything left unwritten is rendered here.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			event := log.Warn()
			var appErr *errors.AppError
			if !errors.As(e.Err, &appErr) || appErr.Code == errors.ErrInternal {
				event = log.Error()
			}
			event.
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		if !c.Writer.Written() {
			httputil.RespondWithError(c, c.Errors.Last().Err)
		}
	}
}
