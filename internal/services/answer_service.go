// Package services – AnswerService
//
// This file implements AnswerService, which creates and lists the answers of
// a question. Creation checks that the question exists and inserts the
// answer as one atomic store step; a question deleted afterwards keeps its
// answers.
//
// Optional enhancement: when a DB is configured, creation honours an
// Idempotency-Key so that a retried POST within the TTL replays the first
// answer instead of inserting a second one. The key is claimed before the
// answer is inserted and released again if the insert fails.
//
// Observability: all public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/repo"
	"github.com/tbourn/go-qa-backend/internal/store"
)

// DefaultIdempotencyTTL is used when AnswerService.IdempotencyTTL is zero.
const DefaultIdempotencyTTL = 24 * time.Hour

// AnswerStore is the subset of *store.Store used by AnswerService.
type AnswerStore interface {
	QuestionExists(ctx context.Context, id domain.QuestionID) (bool, error)
	AddAnswer(ctx context.Context, a domain.Answer) error
	GetAnswer(ctx context.Context, id domain.AnswerID) (domain.Answer, error)
	ListAnswers(ctx context.Context, id domain.QuestionID) ([]domain.Answer, error)
}

// AnswerService coordinates answer creation and listing.
type AnswerService struct {
	Store AnswerStore

	// Optional idempotency storage. Nil disables Idempotency-Key handling.
	DB             *gorm.DB
	IdempotencyTTL time.Duration
}

// NewAnswerService constructs an AnswerService. db may be nil.
func NewAnswerService(s AnswerStore, db *gorm.DB, ttl time.Duration) *AnswerService {
	return &AnswerService{Store: s, DB: db, IdempotencyTTL: ttl}
}

func answerTracer() trace.Tracer { return otel.Tracer("services/AnswerService") }

// Add creates an answer with a fresh id for question rawQuestionID. A missing
// question fails with ErrQuestionNotFound before any mutation.
//
// When idemKey is non-empty and a live record exists for (question, key), the
// stored answer is returned with replayed=true and nothing is inserted. If the
// request holding the key has not stored its answer yet, Add fails with
// ErrIdempotencyInProgress.
func (s *AnswerService) Add(ctx context.Context, rawQuestionID, content, idemKey string) (a domain.Answer, replayed bool, err error) {
	ctx, span := answerTracer().Start(ctx, "Add",
		trace.WithAttributes(
			attribute.String("question.id", rawQuestionID),
			attribute.Bool("idempotency.key", idemKey != ""),
		),
	)
	defer span.End()

	qid, err := domain.NewQuestionID(rawQuestionID)
	if err != nil {
		return domain.Answer{}, false, err
	}

	// Fast path: no lookup or id generation for unknown questions.
	ok, err := s.Store.QuestionExists(ctx, qid)
	if err != nil {
		return domain.Answer{}, false, err
	}
	if !ok {
		return domain.Answer{}, false, questionNotFound(qid)
	}

	a = domain.Answer{
		ID:         domain.NewAnswerID(),
		Content:    content,
		QuestionID: qid,
	}

	// The key is claimed for a.ID before the insert, so a concurrent request
	// with the same key either replays a.ID or is told to retry.
	claim, prev, held, err := s.reserve(ctx, qid, idemKey, a.ID)
	if err != nil {
		return domain.Answer{}, false, err
	}
	if held {
		span.SetAttributes(attribute.Bool("idempotency.replayed", true))
		return prev, true, nil
	}

	// The existence check is repeated under the store locks; a delete that
	// raced the fast path surfaces here.
	if err := s.Store.AddAnswer(ctx, a); err != nil {
		s.release(ctx, claim)
		if errors.Is(err, store.ErrNotFound) {
			return domain.Answer{}, false, questionNotFound(qid)
		}
		return domain.Answer{}, false, err
	}
	span.SetAttributes(attribute.String("answer.id", a.ID.String()))
	return a, false, nil
}

// List returns the answers of question rawQuestionID ordered by answer id.
func (s *AnswerService) List(ctx context.Context, rawQuestionID string) ([]domain.Answer, error) {
	ctx, span := answerTracer().Start(ctx, "List",
		trace.WithAttributes(attribute.String("question.id", rawQuestionID)),
	)
	defer span.End()

	qid, err := domain.NewQuestionID(rawQuestionID)
	if err != nil {
		return nil, err
	}
	items, err := s.Store.ListAnswers(ctx, qid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, questionNotFound(qid)
	}
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("answers.count", len(items)))
	return items, nil
}

func (s *AnswerService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return DefaultIdempotencyTTL
}

// reserve records key for answer id. When a live record already holds the
// key, the answer it points at is returned with held=true, or
// ErrIdempotencyInProgress if that answer is not stored yet. A nil claim with
// held=false means the request runs without replay protection: no key, no DB,
// or a storage failure, which is logged and otherwise ignored.
func (s *AnswerService) reserve(ctx context.Context, qid domain.QuestionID, key string, id domain.AnswerID) (claim *domain.Idempotency, prev domain.Answer, held bool, err error) {
	if s.DB == nil || key == "" {
		return nil, domain.Answer{}, false, nil
	}
	claim, err = repo.CreateIdempotency(ctx, s.DB, qid.String(), key, id.String(), http.StatusCreated, s.ttl())
	if err == nil {
		return claim, domain.Answer{}, false, nil
	}
	if !errors.Is(err, repo.ErrDuplicate) {
		log.Ctx(ctx).Warn().Err(err).Str("question_id", qid.String()).Msg("idempotency record failed")
		return nil, domain.Answer{}, false, nil
	}

	rec, err := repo.GetIdempotency(ctx, s.DB, qid.String(), key, time.Now().UTC())
	switch {
	case errors.Is(err, repo.ErrNotFound):
		// The holder was released or expired between the insert and the read.
		return nil, domain.Answer{}, false, ErrIdempotencyInProgress
	case err != nil:
		log.Ctx(ctx).Warn().Err(err).Str("question_id", qid.String()).Msg("idempotency lookup failed")
		return nil, domain.Answer{}, false, nil
	}

	prev, err = s.Store.GetAnswer(ctx, domain.AnswerID(rec.AnswerID))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, domain.Answer{}, false, ErrIdempotencyInProgress
	case err != nil:
		return nil, domain.Answer{}, false, err
	}
	return nil, prev, true, nil
}

// release drops a claim whose answer was never stored so the key can be
// retried. It runs even when ctx is already cancelled.
func (s *AnswerService) release(ctx context.Context, claim *domain.Idempotency) {
	if claim == nil {
		return
	}
	if err := repo.DeleteIdempotency(context.WithoutCancel(ctx), s.DB, claim.ID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("question_id", claim.QuestionID).Msg("idempotency release failed")
	}
}
