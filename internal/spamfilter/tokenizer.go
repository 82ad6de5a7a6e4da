package spamfilter

import (
	"regexp"
	"strings"
)

// Minimum token length; shorter tokens carry almost no signal
const minTokenLength = 3

var tokenPattern = regexp.MustCompile(`\w+`)

// stopWords are common English function words excluded from the token set.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "day": {}, "get": {}, "has": {},
	"him": {}, "his": {}, "how": {}, "man": {}, "new": {}, "now": {},
	"old": {}, "see": {}, "two": {}, "way": {}, "who": {}, "its": {},
	"did": {}, "that": {}, "this": {}, "with": {}, "from": {}, "have": {},
	"they": {}, "will": {}, "your": {}, "what": {}, "when": {}, "been": {},
	"were": {}, "said": {}, "each": {}, "which": {}, "their": {}, "there": {},
	"would": {}, "about": {}, "could": {}, "other": {}, "these": {}, "than": {},
	"then": {}, "them": {}, "some": {}, "into": {}, "more": {}, "very": {},
	"just": {}, "over": {}, "also": {}, "only": {}, "such": {}, "here": {},
}

// Tokenize extracts the distinct classifier tokens from a message's subject
// and plain-text body. Text is lower-cased and split on word boundaries;
// short tokens and stop words are discarded. Each token appears at most once
// in the result regardless of how often it occurs in the message.
func Tokenize(subject, body string) []string {
	text := strings.ToLower(subject + " " + body)

	seen := make(map[string]struct{})
	var tokens []string
	for _, word := range tokenPattern.FindAllString(text, -1) {
		if len(word) < minTokenLength {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		tokens = append(tokens, word)
	}
	return tokens
}
