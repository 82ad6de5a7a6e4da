package threading

import (
	"time"

	"github.com/opensky-suite/openmail-backend/internal/models"
)

// DefaultMaxThreadAge bounds subject-based matching: two messages further
// apart than this are never threaded by subject alone.
const DefaultMaxThreadAge = 30 * 24 * time.Hour

// minParticipantOverlap is the number of shared addresses two messages must
// have before a subject match may thread them. One shared address is not
// enough: both messages being addressed to the same mailing list must not
// pull unrelated conversations together.
const minParticipantOverlap = 2

// Config holds constructor-time threading options.
type Config struct {
	// MaxThreadAge is the symmetric window for subject-based matching.
	// Non-positive values fall back to DefaultMaxThreadAge.
	MaxThreadAge time.Duration
	// DisableSubjectNormalization compares raw subjects instead of
	// normalized ones.
	DisableSubjectNormalization bool
}

// Matcher assigns incoming messages to existing threads.
type Matcher struct {
	cfg Config
}

// NewMatcher creates a Matcher with the given options.
func NewMatcher(cfg Config) *Matcher {
	if cfg.MaxThreadAge <= 0 {
		cfg.MaxThreadAge = DefaultMaxThreadAge
	}
	return &Matcher{cfg: cfg}
}

// FindThreadForEmail determines which existing thread the message belongs
// to, returning the empty string when none matches and the caller must start
// a new thread. Candidates are the user's recent prior messages, pre-fetched
// and bounded by the caller.
//
// Resolution order, first match wins:
//  1. In-Reply-To equals a candidate's message identifier.
//  2. Each identifier in the References header, in header order.
//  3. Equal normalized subject, received within the age window in either
//     direction, and at least two overlapping participants.
func (m *Matcher) FindThreadForEmail(msg *models.Message, candidates []*models.Message) string {
	if msg.InReplyTo != "" {
		for _, candidate := range candidates {
			if candidate.MessageID != "" && candidate.MessageID == msg.InReplyTo && candidate.ThreadID != "" {
				return candidate.ThreadID
			}
		}
	}

	for _, ref := range ParseReferences(msg.References) {
		for _, candidate := range candidates {
			if candidate.MessageID == ref && candidate.ThreadID != "" {
				return candidate.ThreadID
			}
		}
	}

	subject := m.subjectKey(msg.Subject)
	participants := participantSet(msg)
	for _, candidate := range candidates {
		if candidate.ThreadID == "" {
			continue
		}
		if m.subjectKey(candidate.Subject) != subject {
			continue
		}
		age := msg.ReceivedAt.Sub(candidate.ReceivedAt)
		if age < 0 {
			age = -age
		}
		if age > m.cfg.MaxThreadAge {
			continue
		}
		if participantOverlap(participants, candidate) >= minParticipantOverlap {
			return candidate.ThreadID
		}
	}

	return ""
}

func (m *Matcher) subjectKey(subject string) string {
	if m.cfg.DisableSubjectNormalization {
		return subject
	}
	return NormalizeSubject(subject)
}

// participantSet collects sender plus all to/cc addresses, compared
// case-sensitively as given.
func participantSet(msg *models.Message) map[string]struct{} {
	set := make(map[string]struct{}, 1+len(msg.ToAddresses)+len(msg.CcAddresses))
	if msg.SenderEmail != "" {
		set[msg.SenderEmail] = struct{}{}
	}
	for _, addr := range msg.ToAddresses {
		set[addr] = struct{}{}
	}
	for _, addr := range msg.CcAddresses {
		set[addr] = struct{}{}
	}
	return set
}

func participantOverlap(participants map[string]struct{}, candidate *models.Message) int {
	overlap := 0
	for addr := range participantSet(candidate) {
		if _, ok := participants[addr]; ok {
			overlap++
		}
	}
	return overlap
}
