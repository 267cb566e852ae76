// Package handlers defines HTTP-layer error codes and the single place where
// internal failures are translated into HTTP responses.
//
// Conventions:
//   - Codes are lowercase snake_case and mirror HTTP status semantics.
//   - Services return typed errors (see package services); handlers never
//     switch on them inline but pass them to mapError.
//   - The message is err.Error(), so it names the offending parameter, value
//     or id.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_found",
//	  "message": "question not found: Q9"
//	}
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/services"
)

const (
	ErrCodeBadRequest          = "bad_request"
	ErrCodeForbidden           = "forbidden"
	ErrCodeNotFound            = "not_found"
	ErrCodeMethodNotAllowed    = "method_not_allowed"
	ErrCodeConflict            = "conflict"
	ErrCodeRangeNotSatisfiable = "range_not_satisfiable"
	ErrCodeUnprocessable       = "unprocessable_entity"
	ErrCodeRateLimited         = "too_many_requests"
	ErrCodeInternal            = "internal_error"
)

// ErrOriginForbidden is raised by the router when a cross-origin request
// carries an Origin outside the configured allowlist.
var ErrOriginForbidden = errors.New("origin not allowed")

// BodyError reports a request body that could not be decoded into the
// expected payload.
type BodyError struct {
	Err error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.Err)
}

func (e *BodyError) Unwrap() error { return e.Err }

// mapError writes the error envelope for err and aborts the request.
// Unrecognized errors are attached to the context with c.Error and answered
// with a generic 500 so their detail stays in the logs.
func mapError(c *gin.Context, err error) {
	var (
		parseErr *services.ParseError
		rangeErr *services.RangeError
		bodyErr  *BodyError
	)
	switch {
	case errors.As(err, &parseErr),
		errors.Is(err, services.ErrMissingParameters),
		errors.Is(err, services.ErrEmptyQuestionID):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.As(err, &rangeErr):
		fail(c, http.StatusRequestedRangeNotSatisfiable, ErrCodeRangeNotSatisfiable, err.Error())
	case errors.Is(err, services.ErrQuestionNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrIdempotencyInProgress):
		c.Header("Retry-After", "1")
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.As(err, &bodyErr):
		fail(c, http.StatusUnprocessableEntity, ErrCodeUnprocessable, err.Error())
	case errors.Is(err, ErrOriginForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

// Abort is the exported variant of mapError for middleware that runs outside
// the handlers (for example the router's origin guard).
func Abort(c *gin.Context, err error) { mapError(c, err) }
