package domain

import "time"

// Idempotency records the answer produced by a POST to
// /questions/{id}/answers carrying an Idempotency-Key header, keyed by
// (question_id, key). A retry with the same key inside the TTL window returns
// the recorded answer instead of inserting a second one.
type Idempotency struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	QuestionID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_question_key,priority:1"`
	Key        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_question_key,priority:2"`
	AnswerID   string    `gorm:"type:TEXT NOT NULL"`
	Status     int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
