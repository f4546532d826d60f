package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/movinigamage/FeedBack-Lense-sub000/internal/timeseries"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trend implements timeseries.Source against the response store. The typed
// and string identifier-match modes exist because some deployments persisted
// the response foreign key in a different representation than the survey's
// primary key type.
type Trend struct {
	db *gorm.DB
}

func NewTrend(db *gorm.DB) *Trend {
	return &Trend{db: db}
}

type trendRow struct {
	PeriodStart       time.Time
	ResponseCount     int
	AvgCompletionTime float64
}

// TrendBuckets groups responses by calendar period using the engine's native
// date_trunc primitive. date_trunc('week') anchors to Monday-start ISO weeks.
func (t *Trend) TrendBuckets(ctx context.Context, surveyID uuid.UUID, req timeseries.Request, match timeseries.MatchMode) ([]timeseries.Bucket, error) {
	where, args := trendFilters(surveyID, req, match)

	query := fmt.Sprintf(`
		SELECT
			date_trunc(?, submitted_at AT TIME ZONE ?) AS period_start,
			COUNT(*) AS response_count,
			COALESCE(AVG(completion_time_seconds), 0) AS avg_completion_time
		FROM responses
		WHERE %s
		GROUP BY period_start
		ORDER BY period_start;
	`, where)

	queryArgs := append([]interface{}{string(req.Interval), req.Location.String()}, args...)

	var rows []trendRow
	if err := t.db.WithContext(ctx).Raw(query, queryArgs...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("native trend query failed for survey %s: %w", surveyID, err)
	}

	buckets := make([]timeseries.Bucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, timeseries.Bucket{
			// date_trunc yields a wall-clock time in the requested
			// zone; re-attach the location the driver dropped.
			PeriodStart:       inLocation(row.PeriodStart, req.Location),
			ResponseCount:     row.ResponseCount,
			AvgCompletionTime: row.AvgCompletionTime,
		})
	}
	return buckets, nil
}

// Submissions fetches the raw timestamp rows the manual bucketing tiers work
// from.
func (t *Trend) Submissions(ctx context.Context, surveyID uuid.UUID, req timeseries.Request, match timeseries.MatchMode) ([]timeseries.Submission, error) {
	where, args := trendFilters(surveyID, req, match)

	query := fmt.Sprintf(`
		SELECT submitted_at, completion_time_seconds
		FROM responses
		WHERE %s
		ORDER BY submitted_at;
	`, where)

	var rows []struct {
		SubmittedAt           time.Time
		CompletionTimeSeconds *int
	}
	if err := t.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("submission fetch failed for survey %s: %w", surveyID, err)
	}

	subs := make([]timeseries.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, timeseries.Submission{
			SubmittedAt:       row.SubmittedAt,
			CompletionSeconds: row.CompletionTimeSeconds,
		})
	}
	return subs, nil
}

func trendFilters(surveyID uuid.UUID, req timeseries.Request, match timeseries.MatchMode) (string, []interface{}) {
	where := "survey_id = ?"
	args := []interface{}{surveyID}
	if match == timeseries.MatchString {
		where = "CAST(survey_id AS TEXT) = ?"
		args = []interface{}{surveyID.String()}
	}

	if req.Start != nil {
		where += " AND submitted_at >= ?"
		args = append(args, *req.Start)
	}
	if req.End != nil {
		where += " AND submitted_at < ?"
		args = append(args, *req.End)
	}
	return where, args
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}
