// Package threading reconstructs conversations from independently received
// messages. It resolves which thread an incoming message belongs to using
// reply headers, subject normalization, a time window and participant
// overlap, and derives aggregate thread metadata from a message set. All
// functions are pure over the message data passed in.
package threading

import (
	"regexp"
	"strings"
)

var (
	// Leading reply/forward markers, stripped repeatedly until stable.
	replyPrefixPattern = regexp.MustCompile(`(?i)^(?:re|fwd|fw|forward)\s*:\s*`)
	// Bracketed forward variants like "[Fwd: ...]".
	bracketedPrefixPattern = regexp.MustCompile(`(?i)^\[\s*(?:fwd|fw)\s*:\s*(.*)\]$`)

	referencePattern = regexp.MustCompile(`<([^<>]+)>`)
)

// NormalizeSubject strips repeated leading reply/forward markers (Re:, Fwd:,
// Fw:, Forward: and the bracketed [Fwd:]/[Fw:] variants) case-insensitively
// until no prefix matches, trimming whitespace after each pass. The remaining
// subject text is untouched, and the function is idempotent.
func NormalizeSubject(subject string) string {
	current := strings.TrimSpace(subject)
	for {
		next := strings.TrimSpace(replyPrefixPattern.ReplaceAllString(current, ""))
		if m := bracketedPrefixPattern.FindStringSubmatch(next); m != nil {
			next = strings.TrimSpace(m[1])
		}
		if next == current {
			return current
		}
		current = next
	}
}

// ParseReferences extracts every angle-bracket-delimited message identifier
// from a raw References header value, preserving header order. The brackets
// themselves are stripped. Missing, empty or malformed input yields an empty
// list.
func ParseReferences(header string) []string {
	matches := referencePattern.FindAllStringSubmatch(header, -1)
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if id := strings.TrimSpace(m[1]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
