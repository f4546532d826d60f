package analysis

import (
	"fmt"
	"strings"
)

// SummaryStyle selects between the two summary sentence templates.
type SummaryStyle string

const (
	StyleReport    SummaryStyle = "report"
	StyleNarrative SummaryStyle = "narrative"
)

// EmptySummary is returned whenever there are no answers to summarize,
// regardless of the requested style.
const EmptySummary = "There is not enough response data to generate a summary yet."

const summaryKeywordLimit = 5

// Summarize renders a short natural-language summary of the aggregated
// sentiment and top keywords.
func Summarize(sentiment SentimentResult, keywords []KeywordEntry, answersCount int, style SummaryStyle) string {
	if answersCount == 0 {
		return EmptySummary
	}

	keywordText := "no dominant keywords"
	if len(keywords) > 0 {
		terms := make([]string, 0, summaryKeywordLimit)
		for i, kw := range keywords {
			if i == summaryKeywordLimit {
				break
			}
			terms = append(terms, kw.Term)
		}
		keywordText = strings.Join(terms, ", ")
	}

	if style == StyleNarrative {
		return fmt.Sprintf(
			"Respondents are feeling %s overall (%.2f). Across %d answers, they talked mostly about: %s.",
			sentiment.Label, sentiment.Score, answersCount, keywordText,
		)
	}
	return fmt.Sprintf(
		"Analysis of %d answers indicates %s overall sentiment (score: %.2f). Key topics: %s.",
		answersCount, sentiment.Label, sentiment.Score, keywordText,
	)
}
