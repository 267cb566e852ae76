// Package store implements the in-memory repository that owns every question
// and answer of the service.
//
// The store keeps two independent collections, each guarded by its own
// sync.RWMutex: any number of concurrent readers or a single writer per
// collection. Operations that touch both collections (AddAnswer) lock
// questions before answers, and no lock is held while control leaves the
// store.
//
// Every method takes a context. A context that is already done fails with its
// error before any lock is taken, so an operation is either fully applied or
// not started at all.
//
// Error semantics:
//   - Missing questions are reported as ErrNotFound (services translate it to
//     services.ErrQuestionNotFound).
//   - Values crossing the API boundary are copies; callers never alias map
//     memory.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// ErrNotFound is returned when the requested question or answer does not
// exist.
var ErrNotFound = errors.New("not found")

// Store is the concurrent, map-based repository. The zero value is not usable;
// construct it with New.
type Store struct {
	qmu       sync.RWMutex
	questions map[domain.QuestionID]domain.Question

	amu     sync.RWMutex
	answers map[domain.AnswerID]domain.Answer
}

// New returns a Store whose questions collection is seeded with seed (later
// duplicates of an id replace earlier ones) and whose answers collection is
// empty.
func New(seed []domain.Question) *Store {
	s := &Store{
		questions: make(map[domain.QuestionID]domain.Question, len(seed)),
		answers:   make(map[domain.AnswerID]domain.Answer),
	}
	for _, q := range seed {
		s.questions[q.ID] = q.Clone()
	}
	storedQuestions.Set(float64(len(s.questions)))
	storedAnswers.Set(0)
	return s
}

// ListQuestions returns a snapshot of all questions. Order is unspecified.
func (s *Store) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.qmu.RLock()
	defer s.qmu.RUnlock()

	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q.Clone())
	}
	return out, nil
}

// GetQuestion returns the question stored under id, or ErrNotFound.
func (s *Store) GetQuestion(ctx context.Context, id domain.QuestionID) (domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return domain.Question{}, err
	}
	s.qmu.RLock()
	defer s.qmu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, ErrNotFound
	}
	return q.Clone(), nil
}

// PutQuestion inserts q or replaces the record with the same id entirely.
func (s *Store) PutQuestion(ctx context.Context, q domain.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.qmu.Lock()
	defer s.qmu.Unlock()

	s.questions[q.ID] = q.Clone()
	storedQuestions.Set(float64(len(s.questions)))
	return nil
}

// UpdateQuestion replaces the question stored under id with q. It never
// creates: a missing id yields ErrNotFound and leaves the store unchanged.
// The record stays keyed by id; q.ID is overwritten to match.
func (s *Store) UpdateQuestion(ctx context.Context, id domain.QuestionID, q domain.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.qmu.Lock()
	defer s.qmu.Unlock()

	if _, ok := s.questions[id]; !ok {
		return ErrNotFound
	}
	q = q.Clone()
	q.ID = id
	s.questions[id] = q
	return nil
}

// DeleteQuestion removes the question stored under id. Answers referencing it
// are left untouched.
func (s *Store) DeleteQuestion(ctx context.Context, id domain.QuestionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.qmu.Lock()
	defer s.qmu.Unlock()

	if _, ok := s.questions[id]; !ok {
		return ErrNotFound
	}
	delete(s.questions, id)
	storedQuestions.Set(float64(len(s.questions)))
	return nil
}

// QuestionExists reports whether a question is stored under id.
func (s *Store) QuestionExists(ctx context.Context, id domain.QuestionID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.qmu.RLock()
	defer s.qmu.RUnlock()

	_, ok := s.questions[id]
	return ok, nil
}

// PutAnswer inserts a. Answer ids are generated fresh, so collisions are not
// checked.
func (s *Store) PutAnswer(ctx context.Context, a domain.Answer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.amu.Lock()
	defer s.amu.Unlock()

	s.answers[a.ID] = a
	storedAnswers.Set(float64(len(s.answers)))
	return nil
}

// AddAnswer inserts a only if its question exists, as one atomic step: the
// questions read lock is held until the answer is written, so a concurrent
// DeleteQuestion cannot slip in between the check and the insert.
//
// Lock order is questions, then answers.
func (s *Store) AddAnswer(ctx context.Context, a domain.Answer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.qmu.RLock()
	defer s.qmu.RUnlock()

	if _, ok := s.questions[a.QuestionID]; !ok {
		return ErrNotFound
	}

	s.amu.Lock()
	defer s.amu.Unlock()

	s.answers[a.ID] = a
	storedAnswers.Set(float64(len(s.answers)))
	return nil
}

// GetAnswer returns the answer stored under id, or ErrNotFound.
func (s *Store) GetAnswer(ctx context.Context, id domain.AnswerID) (domain.Answer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Answer{}, err
	}
	s.amu.RLock()
	defer s.amu.RUnlock()

	a, ok := s.answers[id]
	if !ok {
		return domain.Answer{}, ErrNotFound
	}
	return a, nil
}

// ListAnswers returns the answers of question id ordered by answer id. It
// fails with ErrNotFound when the question does not exist.
func (s *Store) ListAnswers(ctx context.Context, id domain.QuestionID) ([]domain.Answer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.qmu.RLock()
	defer s.qmu.RUnlock()

	if _, ok := s.questions[id]; !ok {
		return nil, ErrNotFound
	}

	s.amu.RLock()
	defer s.amu.RUnlock()

	out := make([]domain.Answer, 0)
	for _, a := range s.answers {
		if a.QuestionID == id {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Counts returns the current size of both collections.
func (s *Store) Counts() (questions, answers int) {
	s.qmu.RLock()
	questions = len(s.questions)
	s.qmu.RUnlock()

	s.amu.RLock()
	answers = len(s.answers)
	s.amu.RUnlock()
	return questions, answers
}
