package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/movinigamage/FeedBack-Lense-sub000/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResponseSource is the subset of response-store operations the orchestrator
// needs. The store is read-only from this subsystem's perspective.
type ResponseSource interface {
	ResponsesBySurvey(ctx context.Context, surveyID uuid.UUID) ([]models.Response, error)
	LatestSubmission(ctx context.Context, surveyID uuid.UUID) (time.Time, bool, error)
	CountSubmittedAfter(ctx context.Context, surveyID uuid.UUID, since time.Time) (int, error)
}

// Options tune one analysis run.
type Options struct {
	TopN           int
	ExtraStopwords []string
	SummaryStyle   SummaryStyle
}

// Details carries the raw volume numbers behind a result.
type Details struct {
	AnswersCount int `json:"answersCount"`
	Tokens       int `json:"tokens"`
}

// Result is the full outcome of one analysis run. It is recomputed per
// request and never persisted.
type Result struct {
	TopKeywords      []KeywordEntry  `json:"topKeywords"`
	OverallSentiment SentimentResult `json:"overallSentiment"`
	Details          Details         `json:"details"`
	Summary          string          `json:"summary"`
}

// UpdateCheck answers "has anything changed since T" for a survey.
type UpdateCheck struct {
	Updated        bool       `json:"updated"`
	LastResponseAt *time.Time `json:"lastResponseAt"`
	NewCount       *int       `json:"newCount,omitempty"`
}

// Service orchestrates the text-analysis pipeline over a survey's responses.
type Service struct {
	log    *zap.Logger
	source ResponseSource
	scorer *SentimentScorer
}

func NewService(log *zap.Logger, source ResponseSource) *Service {
	return &Service{
		log:    log,
		source: source,
		scorer: NewSentimentScorer(),
	}
}

// Analyze fetches every answer belonging to the survey's responses, runs the
// normalize/keyword/sentiment pipeline over them and renders a summary.
// A survey with zero responses yields a well-defined empty result, not an
// error.
func (s *Service) Analyze(ctx context.Context, surveyID uuid.UUID, opts Options) (*Result, error) {
	responses, err := s.source.ResponsesBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch responses: %w", err)
	}

	if opts.TopN <= 0 {
		opts.TopN = DefaultTopKeywords
	}
	if opts.SummaryStyle == "" {
		opts.SummaryStyle = StyleReport
	}
	extra := NewStopwords(opts.ExtraStopwords)

	keywords := NewKeywordAggregator()
	var sentiment sentimentAccumulator
	totalTokens := 0

	for _, response := range responses {
		for _, answer := range response.Answers {
			// Empty or whitespace-only answers are skipped entirely;
			// they affect neither counts nor scores.
			if strings.TrimSpace(answer.Text) == "" {
				continue
			}

			tokens := Normalize(answer.Text, extra)
			keywords.Add(tokens)
			sentiment.add(s.scorer.ScoreTokens(tokens), len(tokens))
			totalTokens += len(tokens)
		}
	}

	overall := sentiment.overall()
	top := keywords.Top(opts.TopN)
	details := Details{AnswersCount: sentiment.answerCount, Tokens: totalTokens}

	s.log.Debug("Survey analysis completed",
		zap.String("surveyID", surveyID.String()),
		zap.Int("responses", len(responses)),
		zap.Int("answers", details.AnswersCount),
		zap.Int("tokens", details.Tokens),
		zap.Float64("sentiment", overall.Score),
	)

	return &Result{
		TopKeywords:      top,
		OverallSentiment: overall,
		Details:          details,
		Summary:          Summarize(overall, top, details.AnswersCount, opts.SummaryStyle),
	}, nil
}

// PollUpdates reports the most recent submission timestamp for a survey and,
// when since is supplied, how many responses arrived strictly after it. A
// survey with no responses at all reports "not updated" rather than failing.
func (s *Service) PollUpdates(ctx context.Context, surveyID uuid.UUID, since *time.Time) (UpdateCheck, error) {
	latest, found, err := s.source.LatestSubmission(ctx, surveyID)
	if err != nil {
		return UpdateCheck{}, fmt.Errorf("failed to fetch latest submission: %w", err)
	}
	if !found {
		return UpdateCheck{Updated: false, LastResponseAt: nil}, nil
	}

	check := UpdateCheck{LastResponseAt: &latest}
	if since == nil {
		// The caller has no baseline yet, so any existing data counts
		// as an update.
		check.Updated = true
		return check, nil
	}

	newCount, err := s.source.CountSubmittedAfter(ctx, surveyID, *since)
	if err != nil {
		return UpdateCheck{}, fmt.Errorf("failed to count new responses: %w", err)
	}
	check.Updated = latest.After(*since)
	check.NewCount = &newCount
	return check, nil
}
