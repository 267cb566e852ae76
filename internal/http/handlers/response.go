// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response envelopes shared by every endpoint. Errors
// always carry a stable `code`; successful mutations answer with a short
// acknowledgement.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "question not found: 42"
//	}
//
// Example acknowledgement:
//
//	HTTP/1.1 201 Created
//	{ "message": "Question added" }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message naming the failing parameter or id
	Message string `json:"message" example:"question not found: 42"`
}

// AckResponse acknowledges a successful mutation. ID is set when the server
// generated an identifier (answers).
type AckResponse struct {
	Message string `json:"message" example:"Question added"`
	ID      string `json:"id,omitempty" example:"6f1c2a5e-1d8b-4a8e-9b51-5b9d9a3f6c11"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		ev := lg.Error().
			Int("status", status).
			Str("code", code)
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			ev = ev.Str("cause", errs.String())
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for the router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func ack(c *gin.Context, status int, msg string) {
	c.JSON(status, AckResponse{Message: msg})
}
