package spamfilter

import "regexp"

// Each matched pattern adds this many points, capped at 100.
const patternMatchWeight = 15

// spamPhrasePatterns is the fixed list of canonical spam phrases. Matching is
// done against the lower-cased concatenation of subject and body, and every
// pattern counts at most once per message.
var spamPhrasePatterns = []*regexp.Regexp{
	// Pharmacy / enhancement drugs
	regexp.MustCompile(`viagra|cialis|levitra`),
	regexp.MustCompile(`cheap (?:viagra|cialis|meds|pills|drugs)`),
	regexp.MustCompile(`online pharmacy|no prescription`),
	regexp.MustCompile(`male enhancement|penis enlargement`),
	// Weight loss / diet
	regexp.MustCompile(`weight[ -]?loss|lose weight|diet pills?|burn fat`),
	// Urgency
	regexp.MustCompile(`act now|click (?:here|now)|limited time|urgent re(?:sponse|ply)|don'?t miss`),
	// Lottery / prize
	regexp.MustCompile(`you(?:'ve| have)? won|lottery|claim your prize|congratulations.{0,20}winner`),
	// Money-making schemes
	regexp.MustCompile(`make money fast|work from home|earn \$|get rich|extra income|risk[ -]?free`),
	// Advance-fee / inheritance scams
	regexp.MustCompile(`nigerian? prince|inheritance|beneficiary|wire transfer|million (?:dollars|usd)|advance fee`),
	regexp.MustCompile(`100% free|free gift|no obligation`),
}

// patternScore tests the lower-cased subject+body text against the fixed
// phrase list and returns min(100, matches*15) along with the match count.
func patternScore(text string) (score, matches int) {
	for _, pattern := range spamPhrasePatterns {
		if pattern.MatchString(text) {
			matches++
		}
	}
	score = matches * patternMatchWeight
	if score > 100 {
		score = 100
	}
	return score, matches
}
