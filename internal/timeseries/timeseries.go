// Package timeseries buckets survey responses into calendar periods for
// trend display. The response store is not guaranteed to have consistent
// identifier typing or a date-truncation primitive across deployments, so
// aggregation runs through an ordered chain of fallback strategies and only
// fails when every tier does.
package timeseries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Interval is the calendar bucket width for a trend series.
type Interval string

const (
	IntervalHour  Interval = "hour"
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// MatchMode selects how the survey identifier is matched against the
// response store's foreign key column.
type MatchMode int

const (
	// MatchTyped compares against the column's native type.
	MatchTyped MatchMode = iota
	// MatchString compares by string equality, tolerating stores where
	// the foreign key was persisted in a different representation than
	// the survey's primary key type.
	MatchString
)

// Request is a normalized trend query.
type Request struct {
	Interval Interval
	Location *time.Location
	Start    *time.Time
	End      *time.Time
}

// Bucket is one period of the trend series.
type Bucket struct {
	PeriodStart       time.Time `json:"periodStart"`
	ResponseCount     int       `json:"responseCount"`
	AvgCompletionTime float64   `json:"avgCompletionTime"`
}

// Submission is the raw material for the manual bucketing tiers.
type Submission struct {
	SubmittedAt       time.Time
	CompletionSeconds *int
}

// Source is the store-facing side of the aggregator. TrendBuckets uses the
// engine's native date-truncation primitive; Submissions fetches raw rows
// for engines that lack one.
type Source interface {
	TrendBuckets(ctx context.Context, surveyID uuid.UUID, req Request, match MatchMode) ([]Bucket, error)
	Submissions(ctx context.Context, surveyID uuid.UUID, req Request, match MatchMode) ([]Submission, error)
}

// NormalizeRequest maps raw caller options onto a safe Request. Unsupported
// intervals become day and unknown timezones become UTC; malformed options
// are never rejected.
func NormalizeRequest(interval, timezone string, start, end *time.Time) Request {
	req := Request{Interval: Interval(interval), Location: time.UTC, Start: start, End: end}

	switch req.Interval {
	case IntervalHour, IntervalDay, IntervalWeek, IntervalMonth:
	default:
		req.Interval = IntervalDay
	}

	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			req.Location = loc
		}
	}
	return req
}

// Aggregator produces trend series through the fallback chain.
type Aggregator struct {
	log    *zap.Logger
	source Source
}

func NewAggregator(log *zap.Logger, source Source) *Aggregator {
	return &Aggregator{log: log, source: source}
}

// Series runs the strategy tiers in order and returns the first non-empty
// result. A tier that errors falls through silently to the next; an empty
// tier lets the next one try as well. Only if all four tiers error does the
// caller see a failure.
func (a *Aggregator) Series(ctx context.Context, surveyID uuid.UUID, req Request) ([]Bucket, error) {
	type strategy struct {
		name string
		run  func(context.Context) ([]Bucket, error)
	}

	strategies := []strategy{
		{"native/typed", func(ctx context.Context) ([]Bucket, error) {
			return a.source.TrendBuckets(ctx, surveyID, req, MatchTyped)
		}},
		{"native/string", func(ctx context.Context) ([]Bucket, error) {
			return a.source.TrendBuckets(ctx, surveyID, req, MatchString)
		}},
		{"manual/typed", func(ctx context.Context) ([]Bucket, error) {
			return a.manual(ctx, surveyID, req, MatchTyped)
		}},
		{"manual/string", func(ctx context.Context) ([]Bucket, error) {
			return a.manual(ctx, surveyID, req, MatchString)
		}},
	}

	var firstErr error
	succeeded := false
	for _, st := range strategies {
		buckets, err := st.run(ctx)
		if err != nil {
			a.log.Debug("Trend strategy failed, falling through",
				zap.String("strategy", st.name),
				zap.String("surveyID", surveyID.String()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		succeeded = true
		if len(buckets) > 0 {
			sort.Slice(buckets, func(i, j int) bool {
				return buckets[i].PeriodStart.Before(buckets[j].PeriodStart)
			})
			return buckets, nil
		}
	}

	if succeeded {
		// Every tier agreed there is no data in range.
		return []Bucket{}, nil
	}
	return nil, fmt.Errorf("trend aggregation failed on every strategy: %w", firstErr)
}

func (a *Aggregator) manual(ctx context.Context, surveyID uuid.UUID, req Request, match MatchMode) ([]Bucket, error) {
	subs, err := a.source.Submissions(ctx, surveyID, req, match)
	if err != nil {
		return nil, err
	}
	return bucketSubmissions(subs, req.Interval, req.Location)
}
