package analysis

import (
	"sort"

	"github.com/kljensen/snowball/english"
)

// DefaultTopKeywords caps the keyword list when the caller does not ask for a
// specific size.
const DefaultTopKeywords = 20

// KeywordEntry is one aggregated keyword; Term is the representative surface
// form for display, Stem the form the counts were grouped under.
type KeywordEntry struct {
	Term  string `json:"term"`
	Stem  string `json:"stem"`
	Count int    `json:"count"`
}

type stemStats struct {
	count        int
	firstSeen    int
	surfaces     map[string]int
	surfaceOrder []string
}

// KeywordAggregator accumulates token frequencies grouped by stem. State is
// local to one analysis run; nothing is carried over between runs.
type KeywordAggregator struct {
	stems map[string]*stemStats
	order []string
}

func NewKeywordAggregator() *KeywordAggregator {
	return &KeywordAggregator{stems: make(map[string]*stemStats)}
}

// Add folds a normalized token sequence into the aggregate.
func (a *KeywordAggregator) Add(tokens []string) {
	for _, token := range tokens {
		stem := english.Stem(token, false)
		stats, ok := a.stems[stem]
		if !ok {
			stats = &stemStats{firstSeen: len(a.order), surfaces: make(map[string]int)}
			a.stems[stem] = stats
			a.order = append(a.order, stem)
		}
		stats.count++
		if _, seen := stats.surfaces[token]; !seen {
			stats.surfaceOrder = append(stats.surfaceOrder, token)
		}
		stats.surfaces[token]++
	}
}

// Top returns up to n keyword entries sorted by count descending. Ties keep
// the order in which the stems first appeared; the representative term is the
// most frequent surface form of the stem, first-seen winning ties.
func (a *KeywordAggregator) Top(n int) []KeywordEntry {
	if n <= 0 {
		n = DefaultTopKeywords
	}

	entries := make([]KeywordEntry, 0, len(a.order))
	for _, stem := range a.order {
		stats := a.stems[stem]
		entries = append(entries, KeywordEntry{
			Term:  stats.representativeSurface(),
			Stem:  stem,
			Count: stats.count,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func (s *stemStats) representativeSurface() string {
	best := ""
	bestCount := -1
	for _, surface := range s.surfaceOrder {
		if c := s.surfaces[surface]; c > bestCount {
			best = surface
			bestCount = c
		}
	}
	return best
}
