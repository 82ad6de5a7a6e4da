package threading

import (
	"strings"
	"testing"
	"time"

	"github.com/opensky-suite/openmail-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aggregateBase = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// ==================== Snippet Tests ====================

func TestThreadSnippet(t *testing.T) {
	tests := []struct {
		name      string
		msg       models.Message
		maxLength int
		want      string
	}{
		{
			name:      "plain text preferred over html",
			msg:       models.Message{BodyText: "plain body", BodyHTML: "<p>html body</p>"},
			maxLength: 100,
			want:      "plain body",
		},
		{
			name:      "html tags stripped when no plain text",
			msg:       models.Message{BodyHTML: "<p>Hello <b>world</b></p>"},
			maxLength: 100,
			want:      "Hello  world",
		},
		{
			name:      "first line only",
			msg:       models.Message{BodyText: "first line\nsecond line"},
			maxLength: 100,
			want:      "first line",
		},
		{
			name:      "leading whitespace trimmed",
			msg:       models.Message{BodyText: "\n\n  actual content  "},
			maxLength: 100,
			want:      "actual content",
		},
		{
			name:      "empty body",
			msg:       models.Message{},
			maxLength: 100,
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThreadSnippet(&tt.msg, tt.maxLength))
		})
	}
}

func TestThreadSnippet_Truncation(t *testing.T) {
	msg := &models.Message{BodyText: strings.Repeat("a", 600)}

	snippet := ThreadSnippet(msg, 100)
	assert.Len(t, snippet, 100, "truncated snippet must be exactly maxLength including ellipsis")
	assert.True(t, strings.HasSuffix(snippet, "..."))

	// Default length applies when maxLength is not positive
	snippet = ThreadSnippet(msg, 0)
	assert.Len(t, snippet, DefaultSnippetLength)
}

func TestThreadSnippet_TinyMaxLengthFallsBackToDefault(t *testing.T) {
	msg := &models.Message{BodyText: "hello world this is a body"}

	// Lengths too small to hold the ellipsis must not panic
	for _, maxLen := range []int{1, 2} {
		assert.Equal(t, msg.BodyText, ThreadSnippet(msg, maxLen))
	}

	snippet := ThreadSnippet(&models.Message{BodyText: strings.Repeat("a", 600)}, 2)
	assert.Len(t, snippet, DefaultSnippetLength)
}

func TestThreadSnippet_TruncationIsRuneSafe(t *testing.T) {
	msg := &models.Message{BodyText: strings.Repeat("héllo wörld ", 20)}

	snippet := ThreadSnippet(msg, 50)

	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.Equal(t, 50, len([]rune(snippet)), "length is counted in characters, not bytes")
	for _, r := range snippet {
		assert.NotEqual(t, '�', r, "truncation must not split a multi-byte character")
	}
}

func TestThreadSnippet_ExactLengthNotTruncated(t *testing.T) {
	msg := &models.Message{BodyText: strings.Repeat("a", 100)}
	snippet := ThreadSnippet(msg, 100)
	assert.Equal(t, msg.BodyText, snippet)
}

// ==================== Aggregate Tests ====================

func TestBuildThreadData_EmptyList(t *testing.T) {
	data, err := BuildThreadData(nil)
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrNoMessages)
}

func TestBuildThreadData_SingleMessage(t *testing.T) {
	msg := &models.Message{
		Subject:    "Re: Budget",
		BodyText:   "Numbers attached.",
		ReceivedAt: aggregateBase,
	}

	data, err := BuildThreadData([]*models.Message{msg})
	require.NoError(t, err)

	assert.Equal(t, "Budget", data.Subject)
	assert.Equal(t, "Numbers attached.", data.Snippet)
	assert.Equal(t, 1, data.MessageCount)
	assert.Equal(t, 1, data.UnreadCount)
	assert.Equal(t, aggregateBase, data.LastMessageAt)
}

func TestBuildThreadData_SubjectFromEarliestSnippetFromLatest(t *testing.T) {
	messages := []*models.Message{
		{
			Subject:    "Re: Quarterly Report",
			BodyText:   "Latest reply.",
			ReceivedAt: aggregateBase.Add(2 * time.Hour),
			IsRead:     true,
		},
		{
			Subject:    "Quarterly Report",
			BodyText:   "Original message.",
			ReceivedAt: aggregateBase,
			IsRead:     true,
		},
	}

	data, err := BuildThreadData(messages)
	require.NoError(t, err)

	assert.Equal(t, "Quarterly Report", data.Subject)
	assert.Equal(t, "Latest reply.", data.Snippet)
	assert.Equal(t, 2, data.MessageCount)
	assert.Equal(t, 0, data.UnreadCount)
	assert.Equal(t, aggregateBase.Add(2*time.Hour), data.LastMessageAt)
}

func TestBuildThreadData_FlagFolding(t *testing.T) {
	messages := []*models.Message{
		{ReceivedAt: aggregateBase, IsStarred: true, IsArchived: true, IsTrashed: true},
		{ReceivedAt: aggregateBase.Add(time.Hour), HasAttachments: true, IsArchived: true},
		{ReceivedAt: aggregateBase.Add(2 * time.Hour), IsImportant: true, IsArchived: true, IsTrashed: true},
	}

	data, err := BuildThreadData(messages)
	require.NoError(t, err)

	// OR across members
	assert.True(t, data.HasAttachments)
	assert.True(t, data.IsStarred)
	assert.True(t, data.IsImportant)
	// AND across members
	assert.True(t, data.IsArchived)
	assert.False(t, data.IsTrashed, "one untrashed member keeps the thread out of trash")
}

func TestBuildThreadData_DoesNotMutateInput(t *testing.T) {
	first := &models.Message{Subject: "A", ReceivedAt: aggregateBase.Add(time.Hour)}
	second := &models.Message{Subject: "B", ReceivedAt: aggregateBase}
	messages := []*models.Message{first, second}

	_, err := BuildThreadData(messages)
	require.NoError(t, err)

	assert.Same(t, first, messages[0])
	assert.Same(t, second, messages[1])
}

// ==================== Grouping and Sorting Tests ====================

func TestGroupEmailsIntoThreads(t *testing.T) {
	messages := []*models.Message{
		{ThreadID: "thread-a", Subject: "one"},
		{ThreadID: "thread-a", Subject: "two"},
		{ThreadID: "thread-b", Subject: "three"},
	}
	messages[0].ID = 1
	messages[1].ID = 2
	messages[2].ID = 3
	orphan := &models.Message{Subject: "orphan"}
	orphan.ID = 42
	messages = append(messages, orphan)

	groups := GroupEmailsIntoThreads(messages)

	assert.Len(t, groups, 3)
	assert.Len(t, groups["thread-a"], 2)
	assert.Len(t, groups["thread-b"], 1)
	assert.Len(t, groups["42"], 1, "unthreaded message becomes a singleton keyed by its id")
}

func TestSortThreads(t *testing.T) {
	threads := []*models.Thread{
		{ID: "old", LastMessageAt: aggregateBase},
		{ID: "new", LastMessageAt: aggregateBase.Add(2 * time.Hour)},
		{ID: "mid", LastMessageAt: aggregateBase.Add(time.Hour)},
	}

	SortThreads(threads)

	assert.Equal(t, "new", threads[0].ID)
	assert.Equal(t, "mid", threads[1].ID)
	assert.Equal(t, "old", threads[2].ID)
}

func TestSortThreadEmails(t *testing.T) {
	messages := []*models.Message{
		{Subject: "third", ReceivedAt: aggregateBase.Add(2 * time.Hour)},
		{Subject: "first", ReceivedAt: aggregateBase},
		{Subject: "second", ReceivedAt: aggregateBase.Add(time.Hour)},
	}

	SortThreadEmails(messages)

	assert.Equal(t, "first", messages[0].Subject)
	assert.Equal(t, "second", messages[1].Subject)
	assert.Equal(t, "third", messages[2].Subject)
}
