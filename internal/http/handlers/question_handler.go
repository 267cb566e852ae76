// Question HTTP handlers.
//
// This file exposes REST endpoints for question resources:
//   - GET    /questions          (list, optional start/end range)
//   - GET    /questions/{id}     (fetch one)
//   - POST   /questions          (upsert by caller-supplied id)
//   - PUT    /questions/{id}     (replace an existing question)
//   - DELETE /questions/{id}     (remove; answers are kept)
//
// Handlers are transport-thin: they decode input, call application services,
// and hand every failure to mapError.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

//
// Service contracts (context-aware)
//

// QuestionService defines question lifecycle operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use.
type QuestionService interface {
	// List returns questions ordered by id; params carries the raw query.
	List(ctx context.Context, params map[string]string) ([]domain.Question, error)
	Get(ctx context.Context, id string) (domain.Question, error)
	Create(ctx context.Context, q domain.Question) error
	Update(ctx context.Context, id string, q domain.Question) error
	Delete(ctx context.Context, id string) error
}

// AnswerService defines answer operations consumed by HTTP handlers.
type AnswerService interface {
	// Add creates an answer; replayed reports an idempotent replay.
	Add(ctx context.Context, questionID, content, idemKey string) (a domain.Answer, replayed bool, err error)
	List(ctx context.Context, questionID string) ([]domain.Answer, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for questions and answers.
type Handlers struct {
	questions QuestionService
	answers   AnswerService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(questions QuestionService, answers AnswerService) *Handlers {
	return &Handlers{questions: questions, answers: answers}
}

// queryParams flattens the query string, keeping the first value per key.
func queryParams(c *gin.Context) map[string]string {
	q := c.Request.URL.Query()
	out := make(map[string]string, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// bindJSON decodes the request body into dst, wrapping failures in BodyError.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return &BodyError{Err: err}
	}
	return nil
}

//
// Handlers
//

// ListQuestions godoc
// @ID          listQuestions
// @Summary     List questions
// @Description Returns all questions ordered by id. When any query parameter is
// @Description present, both start and end are required and the half-open
// @Description range [start, end) is returned.
// @Tags        Questions
// @Produce     json
//
// @Param       start  query  int  false  "First index (inclusive)"  minimum(0) example(0)
// @Param       end    query  int  false  "Last index (exclusive)"   minimum(0) example(2)
//
// @Success     200  {array}   domain.Question
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or unparseable range"
// @Failure     416  {object}  handlers.ErrorResponse  "Range outside the collection"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /questions [get]
func (h *Handlers) ListQuestions(c *gin.Context) {
	items, err := h.questions.List(c.Request.Context(), queryParams(c))
	if err != nil {
		mapError(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// GetQuestion godoc
// @ID          getQuestion
// @Summary     Get a question
// @Tags        Questions
// @Produce     json
//
// @Param       id  path  string  true  "Question ID"  example(1)
//
// @Success     200  {object}  domain.Question
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /questions/{id} [get]
func (h *Handlers) GetQuestion(c *gin.Context) {
	q, err := h.questions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapError(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// CreateQuestion godoc
// @ID          createQuestion
// @Summary     Create or replace a question
// @Description Stores the question under its caller-supplied id. An existing
// @Description question with the same id is replaced entirely.
// @Tags        Questions
// @Accept      json
// @Produce     json
//
// @Param       body  body  domain.Question  true  "Question payload"
//
// @Success     201  {object}  handlers.AckResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing id"
// @Failure     422  {object}  handlers.ErrorResponse  "Malformed body"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /questions [post]
func (h *Handlers) CreateQuestion(c *gin.Context) {
	var q domain.Question
	if err := bindJSON(c, &q); err != nil {
		mapError(c, err)
		return
	}
	if err := h.questions.Create(c.Request.Context(), q); err != nil {
		mapError(c, err)
		return
	}
	ack(c, http.StatusCreated, "Question added")
}

// UpdateQuestion godoc
// @ID          updateQuestion
// @Summary     Replace an existing question
// @Description Replaces the question stored under the path id. Never creates;
// @Description the id in the body is ignored.
// @Tags        Questions
// @Accept      json
// @Produce     json
//
// @Param       id    path  string           true  "Question ID"  example(1)
// @Param       body  body  domain.Question  true  "Question payload"
//
// @Success     200  {object}  handlers.AckResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Malformed body"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /questions/{id} [put]
func (h *Handlers) UpdateQuestion(c *gin.Context) {
	var q domain.Question
	if err := bindJSON(c, &q); err != nil {
		mapError(c, err)
		return
	}
	if err := h.questions.Update(c.Request.Context(), c.Param("id"), q); err != nil {
		mapError(c, err)
		return
	}
	ack(c, http.StatusOK, "Question updated")
}

// DeleteQuestion godoc
// @ID          deleteQuestion
// @Summary     Delete a question
// @Description Removes the question. Its answers are kept.
// @Tags        Questions
// @Produce     json
//
// @Param       id  path  string  true  "Question ID"  example(1)
//
// @Success     200  {object}  handlers.AckResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /questions/{id} [delete]
func (h *Handlers) DeleteQuestion(c *gin.Context) {
	if err := h.questions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		mapError(c, err)
		return
	}
	ack(c, http.StatusOK, "Question deleted")
}
