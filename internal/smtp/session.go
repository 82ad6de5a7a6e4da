package smtp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/opensky-suite/openmail-backend/internal/models"
	"github.com/opensky-suite/openmail-backend/internal/repository"
	"github.com/opensky-suite/openmail-backend/internal/validator"
	"github.com/opensky-suite/openmail-backend/internal/websocket"
)

// rejectPermanent is a 550 permanent failure for the current command
func rejectPermanent(message string) *smtp.SMTPError {
	return &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 1, 1},
		Message:      message,
	}
}

// rejectTemporary is a 451 failure asking the sender to retry later
func rejectTemporary() *smtp.SMTPError {
	return &smtp.SMTPError{
		Code:         451,
		EnhancedCode: smtp.EnhancedCode{4, 3, 0},
		Message:      "Temporary error",
	}
}

// Session implements the go-smtp Session interface
type Session struct {
	backend    *Backend
	from       string
	recipients []string
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend) *Session {
	return &Session{
		backend:    backend,
		recipients: make([]string, 0),
	}
}

// AuthPlain handles PLAIN authentication (not required for receiving)
func (s *Session) AuthPlain(username, password string) error {
	return nil
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	s.backend.logger.Debug("MAIL FROM", slog.String("from", from))
	return nil
}

// Rcpt handles the RCPT TO command. Mail for unknown or inactive domains
// is rejected here; unknown mailboxes are rejected unless auto-provision
// is on.
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	localPart, domainName, err := parseEmailAddress(to)
	if err != nil {
		return rejectPermanent("Invalid recipient address")
	}

	ctx := context.Background()
	domain, err := s.backend.domainRepo.GetByName(ctx, domainName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return rejectPermanent("Domain not found")
		}
		return rejectTemporary()
	}
	if !domain.IsActive {
		return rejectPermanent("Domain is not active")
	}

	if !s.backend.autoProvision {
		if _, err := s.backend.mailboxRepo.GetByAddress(ctx, to); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return rejectPermanent("Mailbox not found")
			}
			return rejectTemporary()
		}
	}

	s.recipients = append(s.recipients, to)
	s.backend.logger.Debug("RCPT TO", slog.String("to", to), slog.String("local_part", localPart))
	return nil
}

// Data handles the DATA command - receives the email content
func (s *Session) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No recipients specified",
		}
	}

	parsedEmail, err := ParseEmail(r)
	if err != nil {
		s.backend.logger.Error("failed to parse email", slog.Any("error", err))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse email",
		}
	}

	// Override sender from envelope if not in headers
	if parsedEmail.SenderEmail == "" {
		parsedEmail.SenderEmail = s.from
	}
	// A missing Message-ID would break reply-based threading of responses
	// to this message, so synthesize one.
	if parsedEmail.MessageID == "" {
		parsedEmail.MessageID = uuid.NewString() + "@openmail.generated"
	}

	ctx := context.Background()
	for _, recipient := range s.recipients {
		if err := s.processEmail(ctx, recipient, parsedEmail); err != nil {
			s.backend.logger.Error("failed to process email",
				slog.String("recipient", recipient),
				slog.Any("error", err))
			// Continue processing other recipients
		}
	}

	s.backend.logger.Info("email received",
		slog.String("from", s.from),
		slog.Int("recipients", len(s.recipients)),
		slog.String("subject", parsedEmail.Subject))

	return nil
}

// processEmail runs one recipient's copy through the classification and
// threading pipeline
func (s *Session) processEmail(ctx context.Context, recipient string, email *ParsedEmail) error {
	localPart, domainName, err := parseEmailAddress(recipient)
	if err != nil {
		return err
	}

	domain, err := s.backend.domainRepo.GetByName(ctx, domainName)
	if err != nil {
		return fmt.Errorf("failed to get domain: %w", err)
	}

	mailbox, created, err := s.backend.mailboxRepo.GetOrCreate(ctx, localPart, domain.ID, domain.Name)
	if err != nil {
		return fmt.Errorf("failed to get/create mailbox: %w", err)
	}
	if created {
		s.backend.logger.Info("auto-provisioned mailbox", slog.String("address", mailbox.FullAddress))
	}

	message := &models.Message{
		MailboxID:    mailbox.ID,
		SenderEmail:  email.SenderEmail,
		SenderName:   email.SenderName,
		ToAddresses:  email.To,
		CcAddresses:  email.Cc,
		BccAddresses: email.Bcc,
		Subject:      email.Subject,
		BodyText:     email.BodyText,
		BodyHTML:     email.BodyHTML,
		MessageID:    email.MessageID,
		InReplyTo:    email.InReplyTo,
		References:   email.References,
		SizeBytes:    email.SizeBytes,
		ReceivedAt:   time.Now(),
	}

	attachments := s.saveAttachments(email)

	if err := s.backend.processor.ProcessIncoming(ctx, message, attachments); err != nil {
		return err
	}

	s.notifySubscribers(mailbox.ID, message)
	return nil
}

// saveAttachments writes each attachment blob to storage and returns the
// metadata rows. A failed save drops that attachment but keeps the message.
func (s *Session) saveAttachments(email *ParsedEmail) []models.Attachment {
	var attachments []models.Attachment
	for _, att := range email.Attachments {
		filename := validator.SanitizeFilename(att.Filename)
		filePath, err := s.backend.fileStorage.Save(filename, att.Content)
		if err != nil {
			s.backend.logger.Error("failed to save attachment",
				slog.String("filename", filename),
				slog.Any("error", err))
			continue
		}
		attachments = append(attachments, models.Attachment{
			Filename:    filename,
			ContentType: att.ContentType,
			FilePath:    filePath,
			SizeBytes:   att.Size,
		})
	}
	return attachments
}

// notifySubscribers pushes the stored message, thread id, and spam verdict
// to websocket subscribers of the mailbox
func (s *Session) notifySubscribers(mailboxID uint, message *models.Message) {
	if s.backend.wsHub == nil {
		return
	}
	s.backend.wsHub.BroadcastNewMessage(mailboxID, &websocket.NewMessagePayload{
		ID:          message.ID,
		ThreadID:    message.ThreadID,
		SenderEmail: message.SenderEmail,
		SenderName:  message.SenderName,
		Subject:     message.Subject,
		IsSpam:      message.IsSpam,
		SpamScore:   message.SpamScore,
		ReceivedAt:  message.ReceivedAt.Format(time.RFC3339),
	})
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.recipients = make([]string, 0)
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}

// parseEmailAddress splits an address into lowercased local part and domain
func parseEmailAddress(address string) (localPart, domain string, err error) {
	address = strings.TrimPrefix(address, "<")
	address = strings.TrimSuffix(address, ">")
	address = strings.TrimSpace(address)

	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid email address: %s", address)
	}

	localPart = strings.ToLower(parts[0])
	domain = strings.ToLower(parts[1])
	if localPart == "" || domain == "" {
		return "", "", fmt.Errorf("invalid email address: %s", address)
	}
	return localPart, domain, nil
}
