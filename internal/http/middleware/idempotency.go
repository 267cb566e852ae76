// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key request header used by
// POST /questions/{id}/answers. A valid key is stashed in the Gin context for
// the handler. On the configured replay route only, a lookup that reports the
// key as already used for the question in the path flags the request so the
// rate limiter lets it through.
//
// Replays themselves are served by the answer service, which owns the
// idempotency records.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyRateBypass = "rate.bypass" // bool: skip rate limiting
)

// defaultKeyPattern accepts RFC 7230 token characters plus a few safe extras.
var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the key validated by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters; nil uses defaultKeyPattern.
	Pattern *regexp.Regexp
	// ReplayRoute is the registered route path (as reported by
	// gin.Context.FullPath) whose POSTs are looked up. Requests to any other
	// route or with any other method never bypass the rate limiter. Empty
	// disables the lookup.
	ReplayRoute string
}

// IdempotencyLookup reports whether a still-valid record exists for
// (questionID, key) at now. TTL enforcement belongs to the implementation.
// Errors are treated as a miss.
type IdempotencyLookup func(ctx context.Context, questionID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present.
//
//   - absent header: no-op
//   - invalid key: 400 {"code":"bad_idempotency_key"}
//   - lookup hit for a POST to ReplayRoute: the rate-bypass flag is set
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil && onReplayRoute(c, opts.ReplayRoute) {
			if exists, err := lookup(c.Request.Context(), c.Param("id"), key, time.Now().UTC()); err == nil && exists {
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

func onReplayRoute(c *gin.Context, route string) bool {
	return route != "" &&
		c.Request.Method == http.MethodPost &&
		c.FullPath() == route &&
		c.Param("id") != ""
}
