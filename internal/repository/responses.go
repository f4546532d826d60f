package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/movinigamage/FeedBack-Lense-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Responses reads submission records for the analytics engine. All queries
// are read-only; writes happen in the survey service that owns the store.
type Responses struct {
	db *gorm.DB
}

func NewResponses(db *gorm.DB) *Responses {
	return &Responses{db: db}
}

// ResponsesBySurvey fetches every response for a survey with its answers
// preloaded.
func (r *Responses) ResponsesBySurvey(ctx context.Context, surveyID uuid.UUID) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("survey_id = ?", surveyID).
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load responses for survey %s: %w", surveyID, err)
	}
	return responses, nil
}

// LatestSubmission returns the most recent submission timestamp for a survey.
// The second return value is false when the survey has no responses at all.
func (r *Responses) LatestSubmission(ctx context.Context, surveyID uuid.UUID) (time.Time, bool, error) {
	var latest sql.NullTime
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("survey_id = ?", surveyID).
		Select("MAX(submitted_at)").
		Scan(&latest).Error
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query latest submission for survey %s: %w", surveyID, err)
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return latest.Time, true, nil
}

// CountSubmittedAfter counts responses submitted strictly after the given
// timestamp.
func (r *Responses) CountSubmittedAfter(ctx context.Context, surveyID uuid.UUID, since time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("survey_id = ? AND submitted_at > ?", surveyID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count new responses for survey %s: %w", surveyID, err)
	}
	return int(count), nil
}
