package spamfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    []string
	}{
		{
			name:    "lowercases and splits on word boundaries",
			subject: "Quarterly Report",
			body:    "Numbers attached.",
			want:    []string{"quarterly", "report", "numbers", "attached"},
		},
		{
			name:    "drops short tokens",
			subject: "re it is ok",
			body:    "go on",
			want:    nil,
		},
		{
			name:    "drops stop words",
			subject: "the meeting",
			body:    "this will be about budget",
			want:    []string{"meeting", "budget"},
		},
		{
			name:    "deduplicates repeated tokens",
			subject: "lottery lottery lottery",
			body:    "win the lottery today",
			want:    []string{"lottery", "win", "today"},
		},
		{
			name:    "empty input",
			subject: "",
			body:    "",
			want:    nil,
		},
		{
			name:    "punctuation is not a token",
			subject: "!!! $$$ ???",
			body:    "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.subject, tt.body))
		})
	}
}

func TestTokenize_SubjectAndBodyShareTokenSpace(t *testing.T) {
	// A token occurring in both subject and body still appears once
	tokens := Tokenize("invoice", "invoice attached")
	assert.Equal(t, []string{"invoice", "attached"}, tokens)
}
