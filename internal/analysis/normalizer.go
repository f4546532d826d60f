package analysis

import (
	"regexp"
	"strings"
)

// minTokenLength drops fragments like "a" or a stray "s" left over from
// punctuation stripping.
const minTokenLength = 2

var wordPattern = regexp.MustCompile(`[A-Za-z0-9']+`)

// defaultStopwords is the fixed base stopword set. Negation words ("not",
// "no", "never", "nor") and intensity carriers ("very", "really") are kept
// out of it deliberately: the same token stream feeds the sentiment scorer,
// and removing them would corrupt negation handling there.
var defaultStopwords = map[string]struct{}{}

func init() {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "than",
		"that", "this", "these", "those", "it", "its", "i'm", "it's",
		"me", "my", "we", "our", "ours", "you", "your", "yours",
		"he", "him", "his", "she", "her", "hers", "they", "them", "their",
		"of", "to", "in", "on", "at", "by", "for", "with", "from", "as",
		"is", "are", "was", "were", "be", "been", "being", "am",
		"do", "does", "did", "have", "has", "had",
		"will", "would", "can", "could", "should", "shall", "may", "might",
		"there", "here", "what", "which", "who", "whom", "when", "where",
		"why", "how", "all", "each", "both", "some", "such",
		"about", "into", "out", "up", "down", "over", "under",
		"again", "also", "just", "too", "so", "because", "while", "during",
	}
	for _, w := range words {
		defaultStopwords[w] = struct{}{}
	}
}

// Stopwords is a case-insensitive word set merged on top of the default one.
type Stopwords map[string]struct{}

// NewStopwords builds an extra stopword set from caller-supplied words.
func NewStopwords(words []string) Stopwords {
	if len(words) == 0 {
		return nil
	}
	set := make(Stopwords, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// Normalize turns a raw answer string into an ordered sequence of lowercase
// tokens: split on word boundaries, strip characters outside [a-z0-9'], drop
// tokens shorter than two characters, and drop stopwords. The keyword and
// sentiment paths both consume this exact sequence, so ordering and filtering
// must stay identical for both.
func Normalize(text string, extra Stopwords) []string {
	raw := wordPattern.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(raw))
	for _, word := range raw {
		token := strings.ToLower(word)
		token = strings.Trim(token, "'")
		if len(token) < minTokenLength {
			continue
		}
		if _, ok := defaultStopwords[token]; ok {
			continue
		}
		if _, ok := extra[token]; ok {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
