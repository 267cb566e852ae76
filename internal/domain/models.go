// Package domain defines the entity records of the Q&A service: questions,
// answers, and their identifier types. Questions and answers live in the
// in-memory store; only idempotency records are mapped with GORM.
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// ErrEmptyQuestionID is returned when a QuestionID would be built from an
// empty string.
var ErrEmptyQuestionID = errors.New("question id must not be empty")

// QuestionID identifies a question. It is supplied by the caller on creation
// and is never empty. Equality is plain string equality, which makes it
// usable as a map key.
type QuestionID string

// NewQuestionID validates raw and returns it as a QuestionID.
func NewQuestionID(raw string) (QuestionID, error) {
	if raw == "" {
		return "", ErrEmptyQuestionID
	}
	return QuestionID(raw), nil
}

// String returns the raw identifier.
func (id QuestionID) String() string { return string(id) }

// AnswerID identifies an answer. It is always generated server-side.
type AnswerID string

// NewAnswerID returns a fresh random (UUIDv4) answer identifier.
func NewAnswerID() AnswerID { return AnswerID(uuid.NewString()) }

// String returns the raw identifier.
func (id AnswerID) String() string { return string(id) }

// Question is a user-submitted question.
//
// Fields:
//   - ID: caller-supplied identifier; creating a question with an existing ID
//     replaces the previous record.
//   - Title / Content: free text.
//   - Tags: optional set-like list of labels (omitted from JSON when nil).
type Question struct {
	ID      QuestionID `json:"id"                example:"1"`
	Title   string     `json:"title"             example:"First Question"`
	Content string     `json:"content"           example:"Content of question"`
	Tags    []string   `json:"tags,omitempty"    example:"faq"`
}

// Clone returns a deep copy of q so callers never share the tag slice with
// the store.
func (q Question) Clone() Question {
	if q.Tags != nil {
		q.Tags = append([]string(nil), q.Tags...)
	}
	return q
}

// Answer is a reply to a question.
//
// QuestionID is checked against the store only when the answer is created;
// removing the question later leaves the answer in place.
type Answer struct {
	ID         AnswerID   `json:"id"          example:"3f1c6f0e-8f55-4c1e-9a57-3a1f3c0d8b11"`
	Content    string     `json:"content"     example:"Use a sync.RWMutex."`
	QuestionID QuestionID `json:"question_id" example:"1"`
}

// NormalizeTags trims tags, drops empty entries, and collapses duplicates that
// differ only by case, keeping the first spelling. A nil input stays nil so
// the field remains absent on the wire.
func NormalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	// A Caser may carry state, so each call folds with its own.
	folder := cases.Fold()
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := folder.String(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
