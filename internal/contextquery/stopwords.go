package contextquery

import "strings"

// Stopwords filters low-value terms out of extracted content: a built-in
// English list plus any caller-supplied language keywords (§4.8 step 3).
type Stopwords struct {
	words map[string]bool
}

// NewStopwords builds a filter from the built-in English list plus extra,
// a caller-supplied list of additional words to treat as noise (e.g.
// keywords of whatever programming language the corpus is written in).
func NewStopwords(extra ...string) *Stopwords {
	words := make(map[string]bool, len(englishStopwords)+len(extra))
	for _, w := range englishStopwords {
		words[w] = true
	}
	for _, w := range extra {
		words[strings.ToLower(w)] = true
	}
	return &Stopwords{words: words}
}

// Contains reports whether term (case-insensitively) is a stopword.
func (s *Stopwords) Contains(term string) bool {
	return s.words[strings.ToLower(term)]
}

// englishStopwords is a standard short list of high-frequency English
// function words that carry no topical signal on their own.
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
	"any", "are", "aren't", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "couldn't", "did",
	"didn't", "do", "does", "doesn't", "doing", "don't", "down", "during",
	"each", "few", "for", "from", "further", "had", "hadn't", "has", "hasn't",
	"have", "haven't", "having", "he", "her", "here", "hers", "herself",
	"him", "himself", "his", "how", "i", "if", "in", "into", "is", "isn't",
	"it", "its", "itself", "just", "me", "more", "most", "mustn't", "my",
	"myself", "no", "nor", "not", "now", "of", "off", "on", "once", "only",
	"or", "other", "our", "ours", "ourselves", "out", "over", "own", "same",
	"shan't", "she", "should", "shouldn't", "so", "some", "such", "than",
	"that", "the", "their", "theirs", "them", "themselves", "then", "there",
	"these", "they", "this", "those", "through", "to", "too", "under",
	"until", "up", "very", "was", "wasn't", "we", "were", "weren't", "what",
	"when", "where", "which", "while", "who", "whom", "why", "will", "with",
	"won't", "would", "wouldn't", "you", "your", "yours", "yourself",
	"yourselves",
}
