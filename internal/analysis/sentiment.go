package analysis

import (
	"math"
	"strings"

	"github.com/jonreiter/govader"
)

// Label thresholds for the aggregated sentiment score.
const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2
)

// SentimentLabel classifies the overall polarity of a survey's answers.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// SentimentResult is the aggregated polarity across all scored answers.
type SentimentResult struct {
	Score float64        `json:"score"`
	Label SentimentLabel `json:"label"`
}

// SentimentScorer scores answers with a rule-based VADER analyzer, which
// handles negation ("not good") and intensifiers ("very good") rather than
// summing a bare lexicon.
type SentimentScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewSentimentScorer() *SentimentScorer {
	return &SentimentScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// ScoreTokens computes the polarity of one answer's token sequence. Positive
// means favorable.
func (s *SentimentScorer) ScoreTokens(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	return s.analyzer.PolarityScores(strings.Join(tokens, " ")).Compound
}

// sentimentAccumulator folds per-answer scores into the overall result.
// The overall score divides by the square root of the total token count, so a
// survey with many short answers is not judged more extreme than one with few
// long answers. Kept exactly as shipped for result compatibility.
type sentimentAccumulator struct {
	totalScore  float64
	totalTokens int
	answerCount int
}

// add records one answer. Answers with effectively zero tokens still count as
// length 1 so the normalization never divides by zero.
func (a *sentimentAccumulator) add(score float64, tokenCount int) {
	if tokenCount < 1 {
		tokenCount = 1
	}
	a.totalScore += score
	a.totalTokens += tokenCount
	a.answerCount++
}

// overall produces the final normalized score and label, rounded to three
// decimals for display.
func (a *sentimentAccumulator) overall() SentimentResult {
	if a.answerCount == 0 {
		return SentimentResult{Score: 0, Label: SentimentNeutral}
	}

	score := a.totalScore / math.Sqrt(float64(a.totalTokens))
	score = math.Round(score*1000) / 1000

	label := SentimentNeutral
	switch {
	case score > positiveThreshold:
		label = SentimentPositive
	case score < negativeThreshold:
		label = SentimentNegative
	}
	return SentimentResult{Score: score, Label: label}
}
