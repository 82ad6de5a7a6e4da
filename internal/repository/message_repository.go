package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opensky-suite/openmail-backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	CreateWithAttachments(ctx context.Context, message *models.Message, attachments []models.Attachment) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByMailbox(ctx context.Context, mailboxID uint, limit, offset int) ([]models.MessageListItem, int64, error)
	// ListRecentByMailbox returns full message records received since the
	// given time, newest first, for use as threading candidates.
	ListRecentByMailbox(ctx context.Context, mailboxID uint, since time.Time, limit int) ([]*models.Message, error)
	ListByThread(ctx context.Context, threadID string) ([]*models.Message, error)
	MarkAsRead(ctx context.Context, id uint) error
	SetSpam(ctx context.Context, id uint, isSpam bool, score float64) error
	SetFlag(ctx context.Context, id uint, flag string, value bool) error
	Delete(ctx context.Context, id uint) error
	CountUnread(ctx context.Context, mailboxID uint) (int64, error)
}

// flagColumns are the boolean message columns callers may toggle via SetFlag.
var flagColumns = map[string]struct{}{
	"is_starred":   {},
	"is_important": {},
	"is_archived":  {},
	"is_trashed":   {},
}

// messageRepository implements MessageRepository using GORM
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create creates a new message
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	result := r.db.WithContext(ctx).Create(message)
	if result.Error != nil {
		return fmt.Errorf("failed to create message: %w", result.Error)
	}
	return nil
}

// CreateWithAttachments creates a message with its attachments in a transaction
func (r *messageRepository) CreateWithAttachments(ctx context.Context, message *models.Message, attachments []models.Attachment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		message.HasAttachments = len(attachments) > 0
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		for i := range attachments {
			attachments[i].MessageID = message.ID
			if err := tx.Create(&attachments[i]).Error; err != nil {
				return fmt.Errorf("failed to create attachment: %w", err)
			}
		}

		return nil
	})
}

// GetByID retrieves a message by its ID with preloaded attachments
func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).Preload("Attachments").First(&message, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by ID: %w", result.Error)
	}
	return &message, nil
}

// ListByMailbox retrieves messages for a mailbox with pagination, ordered by received_at descending
func (r *messageRepository) ListByMailbox(ctx context.Context, mailboxID uint, limit, offset int) ([]models.MessageListItem, int64, error) {
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Message{}).Where("mailbox_id = ?", mailboxID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	var results []models.MessageListItem

	query := `
		SELECT
			m.id,
			m.mailbox_id,
			m.thread_id,
			m.sender_email,
			m.sender_name,
			m.subject,
			m.snippet,
			m.is_read,
			m.is_spam,
			m.spam_score,
			m.received_at,
			COALESCE((SELECT COUNT(*) FROM attachments a WHERE a.message_id = m.id), 0) as attachment_count
		FROM messages m
		WHERE m.mailbox_id = ?
		ORDER BY m.received_at DESC
		LIMIT ? OFFSET ?
	`

	if err := r.db.WithContext(ctx).Raw(query, mailboxID, limit, offset).Scan(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	return results, total, nil
}

// ListRecentByMailbox retrieves the mailbox's messages received since the
// cutoff, newest first. The pipeline feeds these to the thread matcher so the
// candidate set stays bounded.
func (r *messageRepository) ListRecentByMailbox(ctx context.Context, mailboxID uint, since time.Time, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	result := r.db.WithContext(ctx).
		Where("mailbox_id = ? AND received_at >= ?", mailboxID, since).
		Order("received_at DESC").
		Limit(limit).
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list recent messages: %w", result.Error)
	}
	return messages, nil
}

// ListByThread retrieves all member messages of a thread, oldest first
func (r *messageRepository) ListByThread(ctx context.Context, threadID string) ([]*models.Message, error) {
	var messages []*models.Message
	result := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("received_at ASC").
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list thread messages: %w", result.Error)
	}
	return messages, nil
}

// MarkAsRead marks a message as read
func (r *messageRepository) MarkAsRead(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark message as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSpam records the classifier verdict (or a human correction) on a message
func (r *messageRepository) SetSpam(ctx context.Context, id uint, isSpam bool, score float64) error {
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_spam": isSpam, "spam_score": score})
	if result.Error != nil {
		return fmt.Errorf("failed to update spam verdict: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFlag toggles one of the allowed boolean flags on a message
func (r *messageRepository) SetFlag(ctx context.Context, id uint, flag string, value bool) error {
	if _, ok := flagColumns[flag]; !ok {
		return fmt.Errorf("flag %q is not settable: %w", flag, ErrInvalidInput)
	}
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Update(flag, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update message flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a message by its ID (cascade deletes attachments)
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread counts unread messages for a mailbox
func (r *messageRepository) CountUnread(ctx context.Context, mailboxID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("mailbox_id = ? AND is_read = ?", mailboxID, false).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", result.Error)
	}
	return count, nil
}
