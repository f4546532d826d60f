package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Survey mirrors the survey record owned by the external CRUD service. This
// subsystem only ever reads it.
type Survey struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatorID     uuid.UUID `gorm:"type:uuid;index"`
	Title         string
	QuestionOrder pq.StringArray `gorm:"type:text[]"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Response is a single submission by an invited participant. Immutable once
// stored; the unique index on InvitationID enforces one submission per
// invitation.
type Response struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	SurveyID              uuid.UUID `gorm:"type:uuid;index"`
	RespondentID          uuid.UUID `gorm:"type:uuid"`
	InvitationID          uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Answers               []Answer  `gorm:"foreignKey:ResponseID"`
	CompletionTimeSeconds *int
	SubmittedAt           time.Time `gorm:"index"`
}

// Answer is one free-text answer inside a response.
type Answer struct {
	ID           uint      `gorm:"primaryKey"`
	ResponseID   uuid.UUID `gorm:"type:uuid;index"`
	QuestionID   string
	QuestionText string
	Text         string
	AnsweredAt   time.Time
}
