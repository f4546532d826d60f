package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_BasicCleaning(t *testing.T) {
	tokens := Normalize("The food was REALLY good!", nil)
	assert.Equal(t, []string{"food", "really", "good"}, tokens)
}

func TestNormalize_DropsShortTokens(t *testing.T) {
	tokens := Normalize("a I x ok", nil)
	assert.Equal(t, []string{"ok"}, tokens)
}

func TestNormalize_KeepsNegationWords(t *testing.T) {
	// Negations feed the sentiment scorer and must survive filtering.
	tokens := Normalize("not good, no really", nil)
	assert.Equal(t, []string{"not", "good", "no", "really"}, tokens)
}

func TestNormalize_StripsPunctuationAndQuotes(t *testing.T) {
	tokens := Normalize(`it was 'great' -- truly don't-stop amazing!!!`, nil)
	assert.Equal(t, []string{"great", "truly", "don't", "stop", "amazing"}, tokens)
}

func TestNormalize_ExtraStopwordsCaseInsensitive(t *testing.T) {
	extra := NewStopwords([]string{"Food", " SERVICE "})
	tokens := Normalize("food service quality", extra)
	assert.Equal(t, []string{"quality"}, tokens)
}

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Empty(t, Normalize("", nil))
	assert.Empty(t, Normalize("   \t\n ", nil))
	assert.Empty(t, Normalize("!!! ... ---", nil))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"The quick brown fox JUMPED over the lazy dog!",
		"not bad at all, really liked it",
		"it's the staff's fault, 100% certain",
	}
	for _, input := range inputs {
		once := Normalize(input, nil)
		twice := Normalize(strings.Join(once, " "), nil)
		assert.Equal(t, once, twice, "re-normalizing %q changed the token list", input)
	}
}
