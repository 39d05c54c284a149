package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"maidmarket/internal/pkg/logger"
	"maidmarket/internal/pkg/response"
)

const requestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		log := logger.WithContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}

		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int64("user_id", c.GetInt64("user_id")).
			Str("request_id", c.GetString("request_id")).
			Msg("http request")
	}
}

// ErrorLogger logs handler errors attached with c.Error and recovers from panics.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.WithContext(c.Request.Context()).Error().
					Err(fmt.Errorf("%v", recovered)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString("request_id")).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				response.Abort(c, http.StatusInternalServerError, response.CodeInternal, "Internal Server Error")
				return
			}

			for _, err := range c.Errors {
				logger.WithContext(c.Request.Context()).Error().
					Err(err.Err).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString("request_id")).
					Interface("meta", err.Meta).
					Msg("request error")
			}
		}()

		c.Next()
	}
}
