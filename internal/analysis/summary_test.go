package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_EmptyDataIgnoresStyle(t *testing.T) {
	sentiment := SentimentResult{Score: 0, Label: SentimentNeutral}
	assert.Equal(t, EmptySummary, Summarize(sentiment, nil, 0, StyleReport))
	assert.Equal(t, EmptySummary, Summarize(sentiment, nil, 0, StyleNarrative))
}

func TestSummarize_ReportStyle(t *testing.T) {
	sentiment := SentimentResult{Score: 0.456, Label: SentimentPositive}
	keywords := []KeywordEntry{
		{Term: "food", Stem: "food", Count: 5},
		{Term: "service", Stem: "servic", Count: 3},
	}

	summary := Summarize(sentiment, keywords, 12, StyleReport)
	assert.Contains(t, summary, "12 answers")
	assert.Contains(t, summary, "positive")
	assert.Contains(t, summary, "0.46")
	assert.Contains(t, summary, "food, service")
}

func TestSummarize_NarrativeStyle(t *testing.T) {
	sentiment := SentimentResult{Score: -0.3, Label: SentimentNegative}
	keywords := []KeywordEntry{{Term: "queue", Stem: "queue", Count: 7}}

	summary := Summarize(sentiment, keywords, 4, StyleNarrative)
	assert.Contains(t, summary, "negative")
	assert.Contains(t, summary, "-0.30")
	assert.Contains(t, summary, "queue")
	assert.NotEqual(t, summary, Summarize(sentiment, keywords, 4, StyleReport))
}

func TestSummarize_NoKeywords(t *testing.T) {
	sentiment := SentimentResult{Score: 0, Label: SentimentNeutral}
	summary := Summarize(sentiment, nil, 3, StyleReport)
	assert.Contains(t, summary, "no dominant keywords")
}

func TestSummarize_LimitsToFiveKeywords(t *testing.T) {
	sentiment := SentimentResult{Score: 0.5, Label: SentimentPositive}
	keywords := []KeywordEntry{
		{Term: "one"}, {Term: "two"}, {Term: "three"},
		{Term: "four"}, {Term: "five"}, {Term: "six"},
	}

	summary := Summarize(sentiment, keywords, 10, StyleReport)
	assert.Contains(t, summary, "five")
	assert.NotContains(t, summary, "six")
}
