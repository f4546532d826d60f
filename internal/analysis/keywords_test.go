package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordAggregator_GroupsByStem(t *testing.T) {
	agg := NewKeywordAggregator()
	agg.Add(Normalize("run running runs", nil))
	agg.Add(Normalize("Run!", nil))

	top := agg.Top(10)
	require.Len(t, top, 1)
	assert.Equal(t, "run", top[0].Stem)
	assert.Equal(t, 4, top[0].Count)
	// "run" appeared twice as a surface form, "running" and "runs" once each.
	assert.Equal(t, "run", top[0].Term)
}

func TestKeywordAggregator_RepresentativeSurfaceForm(t *testing.T) {
	agg := NewKeywordAggregator()
	agg.Add([]string{"running", "running", "run"})

	top := agg.Top(10)
	require.Len(t, top, 1)
	assert.Equal(t, "running", top[0].Term, "most frequent surface form wins")
	assert.Equal(t, 3, top[0].Count)
}

func TestKeywordAggregator_SurfaceTieBrokenByFirstSeen(t *testing.T) {
	agg := NewKeywordAggregator()
	agg.Add([]string{"runs", "running"})

	top := agg.Top(10)
	require.Len(t, top, 1)
	assert.Equal(t, "runs", top[0].Term)
}

func TestKeywordAggregator_SortedByCountThenInsertion(t *testing.T) {
	agg := NewKeywordAggregator()
	agg.Add([]string{"coffee", "wifi", "coffee", "desk", "wifi", "coffee"})

	top := agg.Top(10)
	require.Len(t, top, 3)
	assert.Equal(t, "coffee", top[0].Term)
	assert.Equal(t, 3, top[0].Count)
	// wifi and desk: wifi has 2; desk 1
	assert.Equal(t, "wifi", top[1].Term)
	assert.Equal(t, "desk", top[2].Term)
}

func TestKeywordAggregator_TieKeepsInsertionOrder(t *testing.T) {
	agg := NewKeywordAggregator()
	agg.Add([]string{"zebra", "apple", "mango"})

	top := agg.Top(10)
	require.Len(t, top, 3)
	assert.Equal(t, "zebra", top[0].Term)
	assert.Equal(t, "apple", top[1].Term)
	assert.Equal(t, "mango", top[2].Term)
}

func TestKeywordAggregator_TruncatesToTopN(t *testing.T) {
	agg := NewKeywordAggregator()
	agg.Add([]string{"alpha", "beta", "gamma", "delta", "alpha"})

	top := agg.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, "alpha", top[0].Term)
}

func TestKeywordAggregator_DefaultTopN(t *testing.T) {
	agg := NewKeywordAggregator()
	tokens := make([]string, 0, 30)
	for _, w := range []string{
		"ant", "bee", "cat", "dog", "eel", "fox", "gnu", "hen", "ibex", "jay",
		"kite", "lark", "mole", "newt", "owl", "pig", "quail", "ram", "seal", "toad",
		"urchin", "vole", "wasp", "yak", "zebu",
	} {
		tokens = append(tokens, w)
	}
	agg.Add(tokens)

	top := agg.Top(0)
	assert.Len(t, top, DefaultTopKeywords)
}
