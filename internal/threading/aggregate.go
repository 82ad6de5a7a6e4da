package threading

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/opensky-suite/openmail-backend/internal/models"
)

// DefaultSnippetLength is the maximum snippet size including the ellipsis.
const DefaultSnippetLength = 500

// ErrNoMessages is returned by BuildThreadData for an empty message list. A
// thread cannot be derived from zero messages; callers hitting this should
// skip aggregate maintenance for the batch, not abandon ingestion.
var ErrNoMessages = errors.New("cannot build thread data from an empty message list")

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// ThreadSnippet builds a short preview from a message body. Plain text is
// preferred; an HTML body has its tags stripped. Only the first line is used,
// and truncation leaves exactly maxLength characters including the trailing
// ellipsis. A maxLength too small to hold the ellipsis falls back to
// DefaultSnippetLength.
func ThreadSnippet(msg *models.Message, maxLength int) string {
	if maxLength < 3 {
		maxLength = DefaultSnippetLength
	}

	body := msg.BodyText
	if body == "" && msg.BodyHTML != "" {
		body = htmlTagPattern.ReplaceAllString(msg.BodyHTML, " ")
	}
	body = strings.TrimSpace(body)
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[:i]
	}
	body = strings.TrimSpace(body)

	if runes := []rune(body); len(runes) > maxLength {
		body = string(runes[:maxLength-3]) + "..."
	}
	return body
}

// ThreadData is the aggregate derived from a thread's member messages.
type ThreadData struct {
	Subject        string
	Snippet        string
	MessageCount   int
	UnreadCount    int
	HasAttachments bool
	IsStarred      bool
	IsImportant    bool
	IsArchived     bool
	IsTrashed      bool
	LastMessageAt  time.Time
}

// BuildThreadData derives the thread aggregate from a non-empty message
// list. The subject comes from the earliest message (normalized) and the
// snippet from the latest. Attachment, star and importance flags are OR'd
// across members; archived and trashed require every member to carry the
// flag.
func BuildThreadData(messages []*models.Message) (*ThreadData, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	sorted := make([]*models.Message, len(messages))
	copy(sorted, messages)
	SortThreadEmails(sorted)

	earliest := sorted[0]
	latest := sorted[len(sorted)-1]

	data := &ThreadData{
		Subject:       NormalizeSubject(earliest.Subject),
		Snippet:       ThreadSnippet(latest, DefaultSnippetLength),
		MessageCount:  len(sorted),
		IsArchived:    true,
		IsTrashed:     true,
		LastMessageAt: latest.ReceivedAt,
	}

	for _, msg := range sorted {
		if !msg.IsRead {
			data.UnreadCount++
		}
		data.HasAttachments = data.HasAttachments || msg.HasAttachments
		data.IsStarred = data.IsStarred || msg.IsStarred
		data.IsImportant = data.IsImportant || msg.IsImportant
		data.IsArchived = data.IsArchived && msg.IsArchived
		data.IsTrashed = data.IsTrashed && msg.IsTrashed
	}

	return data, nil
}

// GroupEmailsIntoThreads groups messages by thread id. A message without a
// thread assignment becomes a singleton group keyed by its own identifier.
func GroupEmailsIntoThreads(messages []*models.Message) map[string][]*models.Message {
	groups := make(map[string][]*models.Message)
	for _, msg := range messages {
		key := msg.ThreadID
		if key == "" {
			key = strconv.FormatUint(uint64(msg.ID), 10)
		}
		groups[key] = append(groups[key], msg)
	}
	return groups
}

// SortThreads orders threads by last message time, newest first.
func SortThreads(threads []*models.Thread) {
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastMessageAt.After(threads[j].LastMessageAt)
	})
}

// SortThreadEmails orders a thread's messages chronologically, oldest first.
func SortThreadEmails(messages []*models.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].ReceivedAt.Before(messages[j].ReceivedAt)
	})
}
