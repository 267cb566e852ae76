// Answer HTTP handlers.
//
// This file exposes REST endpoints for the answers of a question:
//   - POST /questions/{id}/answers   (create an answer with a fresh id)
//   - GET  /questions/{id}/answers   (list answers ordered by id)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and the same key was used
// for this question within the TTL, the handler answers with the recorded
// answer id and sets `Idempotency-Replayed: true`. Nothing is inserted.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/http/middleware"
)

// CreateAnswerRequest is the JSON payload for answering a question.
type CreateAnswerRequest struct {
	// Content is the answer text. It must contain a non-space character.
	Content string `json:"content" binding:"required" example:"Guard the map with a sync.RWMutex."`
}

var errBlankContent = errors.New("content must not be blank")

// CreateAnswer godoc
// @ID          createAnswer
// @Summary     Answer a question
// @Description Creates an answer with a server-generated id for an existing question.
// @Description Supports idempotency via the Idempotency-Key header (same key → same answer).
// @Tags        Answers
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    string  true  "Question ID"  example(1)
// @Param       body             body    handlers.CreateAnswerRequest  true  "Answer payload"
//
// @Success     201  {object}  handlers.AckResponse
// @Header      201  {string}  Idempotency-Replayed  "true when the response replays an earlier request"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid Idempotency-Key"
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Same key still in progress"
// @Failure     422  {object}  handlers.ErrorResponse  "Malformed or blank body"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /questions/{id}/answers [post]
func (h *Handlers) CreateAnswer(c *gin.Context) {
	var req CreateAnswerRequest
	if err := bindJSON(c, &req); err != nil {
		mapError(c, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		mapError(c, &BodyError{Err: errBlankContent})
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	a, replayed, err := h.answers.Add(c.Request.Context(), c.Param("id"), req.Content, key)
	if err != nil {
		mapError(c, err)
		return
	}
	if replayed {
		c.Header("Idempotency-Replayed", "true")
	}
	ok(c, http.StatusCreated, AckResponse{Message: "Answer added", ID: a.ID.String()})
}

// ListAnswers godoc
// @ID          listAnswers
// @Summary     List the answers of a question
// @Tags        Answers
// @Produce     json
//
// @Param       id  path  string  true  "Question ID"  example(1)
//
// @Success     200  {array}   domain.Answer
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /questions/{id}/answers [get]
func (h *Handlers) ListAnswers(c *gin.Context) {
	items, err := h.answers.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapError(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}
