package service

import (
	"regexp"
	"strings"
)

// Keyword extraction shared by the retriever's lexical boost and the
// citation audit: lowercase alphanumeric runs minus stop-words.
var wordPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "of": {},
	"in": {}, "on": {}, "for": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "this": {}, "that": {}, "it": {}, "with": {}, "as": {}, "by": {},
	"at": {}, "from": {}, "about": {}, "who": {}, "what": {}, "when": {},
	"where": {}, "which": {},
}

// keywordSet returns the unique non-stop-word tokens of s.
func keywordSet(s string) map[string]struct{} {
	tokens := wordPattern.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, stop := stopWords[t]; stop {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// keywordOverlap returns the fraction of query keywords present in text.
// An empty query keyword set scores zero.
func keywordOverlap(query map[string]struct{}, text string) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for t := range keywordSet(text) {
		if _, ok := query[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}
