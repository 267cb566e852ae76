// Package services defines the orchestration logic for questions and answers.
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into HTTP status codes and user-facing messages happens in one
// place only: the handlers package error mapper.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/utils"
)

var (
	// ErrQuestionNotFound indicates that the requested question does not
	// exist. Returned errors wrap it together with the offending id.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrEmptyQuestionID is returned when a question payload carries no id.
	ErrEmptyQuestionID = domain.ErrEmptyQuestionID

	// ErrMissingParameters is returned when only one of start/end is given.
	ErrMissingParameters = utils.ErrMissingParameters

	// ErrIdempotencyInProgress is returned when another request holding the
	// same Idempotency-Key for the question has not stored its answer yet.
	ErrIdempotencyInProgress = errors.New("a request with this idempotency key is still in progress")
)

// ParseError and RangeError are the pagination failures surfaced by
// QuestionService.List.
type (
	ParseError = utils.ParseError
	RangeError = utils.RangeError
)

// questionNotFound wraps ErrQuestionNotFound with the id that was looked up.
func questionNotFound(id domain.QuestionID) error {
	return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
}
