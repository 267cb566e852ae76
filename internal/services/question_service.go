// Package services – QuestionService
//
// This file implements QuestionService, which owns the question lifecycle on
// top of the in-memory store: listing (optionally paginated), lookup, upsert,
// update and delete.
//
// Listing sorts the snapshot by id before slicing, so repeated calls with the
// same start/end return the same items as long as the store is unchanged.
//
// Observability: all public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/store"
	"github.com/tbourn/go-qa-backend/internal/utils"
)

// QuestionStore is the subset of *store.Store used by QuestionService.
type QuestionStore interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	GetQuestion(ctx context.Context, id domain.QuestionID) (domain.Question, error)
	PutQuestion(ctx context.Context, q domain.Question) error
	UpdateQuestion(ctx context.Context, id domain.QuestionID, q domain.Question) error
	DeleteQuestion(ctx context.Context, id domain.QuestionID) error
}

// QuestionService provides question-level operations.
type QuestionService struct {
	Store QuestionStore
}

// NewQuestionService constructs a QuestionService bound to s.
func NewQuestionService(s QuestionStore) *QuestionService {
	return &QuestionService{Store: s}
}

func questionTracer() trace.Tracer { return otel.Tracer("services/QuestionService") }

// List returns questions ordered by id. With an empty params map the whole
// collection is returned; otherwise start/end are resolved and the half-open
// range [start, end) is returned. Resolution fails with ErrMissingParameters
// or *ParseError; a range that does not fit the collection fails with
// *RangeError.
func (s *QuestionService) List(ctx context.Context, params map[string]string) ([]domain.Question, error) {
	ctx, span := questionTracer().Start(ctx, "List",
		trace.WithAttributes(attribute.Int("params", len(params))),
	)
	defer span.End()

	var (
		page      utils.Pagination
		paginated = len(params) > 0
	)
	if paginated {
		p, err := utils.ExtractPagination(params)
		if err != nil {
			return nil, err
		}
		page = p
		span.SetAttributes(
			attribute.Int64("pagination.start", int64(page.Start)),
			attribute.Int64("pagination.end", int64(page.End)),
		)
	}

	all, err := s.Store.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if !paginated {
		return all, nil
	}
	lo, hi, err := page.Bounds(len(all))
	if err != nil {
		return nil, err
	}
	return all[lo:hi], nil
}

// Get returns a single question or ErrQuestionNotFound.
func (s *QuestionService) Get(ctx context.Context, rawID string) (domain.Question, error) {
	ctx, span := questionTracer().Start(ctx, "Get",
		trace.WithAttributes(attribute.String("question.id", rawID)),
	)
	defer span.End()

	id, err := domain.NewQuestionID(rawID)
	if err != nil {
		return domain.Question{}, err
	}
	q, err := s.Store.GetQuestion(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Question{}, questionNotFound(id)
	}
	return q, err
}

// Create upserts q: a question with the same id is replaced entirely. The id
// must be non-empty; tags are normalized.
func (s *QuestionService) Create(ctx context.Context, q domain.Question) error {
	ctx, span := questionTracer().Start(ctx, "Create",
		trace.WithAttributes(attribute.String("question.id", q.ID.String())),
	)
	defer span.End()

	if _, err := domain.NewQuestionID(q.ID.String()); err != nil {
		return err
	}
	q.Tags = domain.NormalizeTags(q.Tags)
	return s.Store.PutQuestion(ctx, q)
}

// Update replaces the question stored under rawID with q. It never creates;
// a missing id yields ErrQuestionNotFound.
func (s *QuestionService) Update(ctx context.Context, rawID string, q domain.Question) error {
	ctx, span := questionTracer().Start(ctx, "Update",
		trace.WithAttributes(attribute.String("question.id", rawID)),
	)
	defer span.End()

	id, err := domain.NewQuestionID(rawID)
	if err != nil {
		return err
	}
	q.Tags = domain.NormalizeTags(q.Tags)
	if err := s.Store.UpdateQuestion(ctx, id, q); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return questionNotFound(id)
		}
		return err
	}
	return nil
}

// Delete removes the question stored under rawID. Its answers are kept.
func (s *QuestionService) Delete(ctx context.Context, rawID string) error {
	ctx, span := questionTracer().Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("question.id", rawID)),
	)
	defer span.End()

	id, err := domain.NewQuestionID(rawID)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteQuestion(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return questionNotFound(id)
		}
		return err
	}
	return nil
}
