// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the correlation id, the access logger and panic
// recovery. Install them in this order so panics and errors are logged with
// the request id:
//
//  1. RequestID()
//  2. Logger(opts)
//  3. Recovery()
//
// Logger attaches a request-scoped zerolog.Logger both to the Gin context
// (read it with LoggerFrom) and to the request context, so services can use
// zerolog.Ctx(ctx) without knowing about Gin.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
)

// RequestID reuses an incoming X-Request-ID or generates a UUIDv4, stores it
// under "requestID" and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// LogOptions configures Logger.
type LogOptions struct {
	// MaskHeaders are masked in addition to Authorization and Cookie headers.
	MaskHeaders []string
	// LogHeaders adds the scrubbed request headers to each access log line.
	LogHeaders bool
}

// Logger writes one structured access log line per request.
//
// The query string (and headers, when enabled) are scrubbed of ids, emails
// and phone numbers. Level follows the outcome: error for 5xx or when
// handlers recorded errors with c.Error, warn for 4xx, info otherwise.
func Logger(opts LogOptions) gin.HandlerFunc {
	red := newRedactor(opts.MaskHeaders)

	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		lc := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP())
		if qid := c.Param("id"); qid != "" {
			lc = lc.Str("question_id", qid)
		}
		l := lc.Logger()

		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		// Headers are captured before the handler runs.
		var hdrs map[string]string
		if opts.LogHeaders {
			hdrs = red.headers(c.Request.Header)
		}

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Str("errors", c.Errors.String())
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev = ev.
			Str("query", truncate(red.scrub(c.Request.URL.RawQuery), maxQueryLogLength)).
			Str("user_agent", c.Request.UserAgent()).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start))
		if hdrs != nil {
			ev = ev.Interface("headers", hdrs)
		}
		ev.Msg("request")
	}
}

// Recovery turns a panic into a JSON 500 carrying the request id and logs
// the stack. When the response was already written only the status is set.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid := c.GetString(requestIDKey)
				LoggerFrom(c).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if c.Writer.Written() {
					c.AbortWithStatus(http.StatusInternalServerError)
					return
				}
				c.Header(requestIDHeader, rid)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"request_id": rid,
					"code":       "internal_error",
					"message":    "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or a plain copy of the global
// logger when Logger is not installed. Never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate cuts s to max bytes and appends an ellipsis; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
