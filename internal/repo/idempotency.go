// Package repo implements the GORM-backed persistence used by the service.
// Questions and answers never touch the database; this package only holds
// idempotency records for answer creation.
//
// This file provides repository helpers for the Idempotency model used to
// implement safe-retry semantics for POST /questions/{id}/answers.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that an idempotency record already exists for the
// given (question_id, key) pair.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, questionID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(questionID) == "" || key == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("question_id = ? AND key = ? AND expires_at > ?", questionID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency inserts a record and returns ErrDuplicate when a live
// record already holds (questionID, key). An expired record for the same pair
// is replaced rather than waiting for PurgeExpiredIdempotency.
func CreateIdempotency(ctx context.Context, db *gorm.DB, questionID, key, answerID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	err := db.WithContext(ctx).
		Where("question_id = ? AND key = ? AND expires_at <= ?", questionID, key, now).
		Delete(&domain.Idempotency{}).Error
	if err != nil {
		return nil, err
	}

	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		Key:        key,
		AnswerID:   answerID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// DeleteIdempotency removes the record with the given id. Deleting a missing
// record is not an error.
func DeleteIdempotency(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Idempotency{}).Error
}

// PurgeExpiredIdempotency deletes records whose TTL elapsed before now and
// returns how many rows were removed.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
