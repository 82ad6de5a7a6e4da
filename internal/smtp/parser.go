package smtp

import (
	"bytes"
	"io"
	"strings"

	"github.com/jhillyerd/enmime"
)

// ParsedEmail represents a parsed email message, including the threading
// headers the conversation matcher consumes.
type ParsedEmail struct {
	SenderEmail string
	SenderName  string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	BodyText    string
	BodyHTML    string

	// MessageID and InReplyTo have their angle brackets stripped;
	// References keeps the raw header value since order matters there.
	MessageID  string
	InReplyTo  string
	References string

	SizeBytes   int64
	Attachments []ParsedAttachment
}

// ParsedAttachment represents a parsed email attachment
type ParsedAttachment struct {
	Filename    string
	ContentType string
	Content     io.Reader
	Size        int64
}

// ParseEmail parses an email from an io.Reader
func ParseEmail(r io.Reader) (*ParsedEmail, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	parsed := &ParsedEmail{
		Subject:    env.GetHeader("Subject"),
		BodyText:   env.Text,
		BodyHTML:   env.HTML,
		MessageID:  stripAngleBrackets(env.GetHeader("Message-Id")),
		InReplyTo:  stripAngleBrackets(firstToken(env.GetHeader("In-Reply-To"))),
		References: env.GetHeader("References"),
		SizeBytes:  int64(len(raw)),
	}

	parsed.SenderName, parsed.SenderEmail = parseFromHeader(env.GetHeader("From"))
	parsed.To = addressList(env, "To")
	parsed.Cc = addressList(env, "Cc")
	parsed.Bcc = addressList(env, "Bcc")

	for _, att := range env.Attachments {
		parsed.Attachments = append(parsed.Attachments, ParsedAttachment{
			Filename:    att.FileName,
			ContentType: att.ContentType,
			Content:     bytes.NewReader(att.Content),
			Size:        int64(len(att.Content)),
		})
	}

	// Also include inline attachments
	for _, att := range env.Inlines {
		if att.FileName != "" {
			parsed.Attachments = append(parsed.Attachments, ParsedAttachment{
				Filename:    att.FileName,
				ContentType: att.ContentType,
				Content:     bytes.NewReader(att.Content),
				Size:        int64(len(att.Content)),
			})
		}
	}

	return parsed, nil
}

// addressList extracts the bare addresses from an address header, preserving
// their case as given.
func addressList(env *enmime.Envelope, key string) []string {
	parsed, err := env.AddressList(key)
	if err != nil || len(parsed) == 0 {
		return nil
	}
	addresses := make([]string, 0, len(parsed))
	for _, a := range parsed {
		if a.Address != "" {
			addresses = append(addresses, a.Address)
		}
	}
	return addresses
}

// parseFromHeader extracts name and email from a From header
func parseFromHeader(from string) (name, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	// "Display Name <addr@example.com>" form
	if open := strings.LastIndex(from, "<"); open >= 0 {
		if close := strings.LastIndex(from, ">"); close > open {
			email = strings.TrimSpace(from[open+1 : close])
			name = strings.Trim(strings.TrimSpace(from[:open]), `"`)
			return name, email
		}
	}

	// Bare address
	return "", strings.TrimSpace(from)
}

func stripAngleBrackets(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	return strings.TrimSpace(s)
}

// firstToken returns the first whitespace-separated token; In-Reply-To may
// legally carry several identifiers but only the first is used.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
