package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreTokens_PositiveAndNegative(t *testing.T) {
	scorer := NewSentimentScorer()

	good := scorer.ScoreTokens(Normalize("good", nil))
	bad := scorer.ScoreTokens(Normalize("terrible", nil))

	assert.Greater(t, good, 0.0)
	assert.Less(t, bad, 0.0)
}

func TestScoreTokens_NegationFlipsPolarity(t *testing.T) {
	scorer := NewSentimentScorer()

	good := scorer.ScoreTokens(Normalize("good", nil))
	notGood := scorer.ScoreTokens(Normalize("not good", nil))

	assert.Greater(t, good, 0.0)
	assert.NotEqual(t, good, notGood)
	assert.LessOrEqual(t, notGood, 0.0, "negation must flip or dampen polarity")
}

func TestScoreTokens_IntensifierAmplifies(t *testing.T) {
	scorer := NewSentimentScorer()

	good := scorer.ScoreTokens(Normalize("good", nil))
	veryGood := scorer.ScoreTokens(Normalize("really good", nil))

	assert.Greater(t, veryGood, good)
}

func TestScoreTokens_Empty(t *testing.T) {
	scorer := NewSentimentScorer()
	assert.Equal(t, 0.0, scorer.ScoreTokens(nil))
}

func TestSentimentAccumulator_Empty(t *testing.T) {
	var acc sentimentAccumulator
	result := acc.overall()
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, SentimentNeutral, result.Label)
}

func TestSentimentAccumulator_Labels(t *testing.T) {
	cases := []struct {
		name  string
		score float64
		want  SentimentLabel
	}{
		{"positive", 0.5, SentimentPositive},
		{"negative", -0.5, SentimentNegative},
		{"neutral", 0.1, SentimentNeutral},
		{"boundary positive", 0.2, SentimentNeutral},
		{"boundary negative", -0.2, SentimentNeutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var acc sentimentAccumulator
			acc.add(tc.score, 1)
			assert.Equal(t, tc.want, acc.overall().Label)
		})
	}
}

func TestSentimentAccumulator_SqrtNormalization(t *testing.T) {
	var acc sentimentAccumulator
	acc.add(0.6, 4)

	// 0.6 / sqrt(4) = 0.3
	assert.InDelta(t, 0.3, acc.overall().Score, 1e-9)
}

func TestSentimentAccumulator_ZeroTokenAnswersCountAsOne(t *testing.T) {
	var acc sentimentAccumulator
	acc.add(0, 0)
	acc.add(0.9, 1)

	want := 0.9 / math.Sqrt(2)
	want = math.Round(want*1000) / 1000
	assert.InDelta(t, want, acc.overall().Score, 1e-9)
}

func TestSentimentAccumulator_RoundsToThreeDecimals(t *testing.T) {
	var acc sentimentAccumulator
	acc.add(0.1234567, 1)
	assert.Equal(t, 0.123, acc.overall().Score)
}
