package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opensky-suite/openmail-backend/internal/models"
	"gorm.io/gorm"
)

// MailboxRepository defines the interface for mailbox data access
type MailboxRepository interface {
	Create(ctx context.Context, mailbox *models.Mailbox) error
	GetByID(ctx context.Context, id uint) (*models.Mailbox, error)
	GetByAddress(ctx context.Context, fullAddress string) (*models.Mailbox, error)
	GetOrCreate(ctx context.Context, localPart string, domainID uint, domainName string) (*models.Mailbox, bool, error)
	// ListByDomain returns mailbox summaries (unread and spam tallies
	// included) for a domain, newest first.
	ListByDomain(ctx context.Context, domainID uint, limit, offset int) ([]models.MailboxSummary, int64, error)
	UpdateLastAccessed(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// mailboxRepository implements MailboxRepository using GORM
type mailboxRepository struct {
	db *gorm.DB
}

// NewMailboxRepository creates a new MailboxRepository instance
func NewMailboxRepository(db *gorm.DB) MailboxRepository {
	return &mailboxRepository{db: db}
}

// Create creates a new mailbox
func (r *mailboxRepository) Create(ctx context.Context, mailbox *models.Mailbox) error {
	result := r.db.WithContext(ctx).Create(mailbox)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("mailbox with address '%s' already exists: %w", mailbox.FullAddress, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create mailbox: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a mailbox by its ID
func (r *mailboxRepository) GetByID(ctx context.Context, id uint) (*models.Mailbox, error) {
	var mailbox models.Mailbox
	result := r.db.WithContext(ctx).First(&mailbox, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get mailbox by ID: %w", result.Error)
	}
	return &mailbox, nil
}

// GetByAddress retrieves a mailbox by its full email address
func (r *mailboxRepository) GetByAddress(ctx context.Context, fullAddress string) (*models.Mailbox, error) {
	var mailbox models.Mailbox
	result := r.db.WithContext(ctx).Where("full_address = ?", fullAddress).First(&mailbox)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get mailbox by address: %w", result.Error)
	}
	return &mailbox, nil
}

// GetOrCreate retrieves a mailbox by address or creates it on the fly. The
// boolean reports whether a new mailbox was provisioned. Used by the SMTP
// session when auto-provisioning is enabled.
func (r *mailboxRepository) GetOrCreate(ctx context.Context, localPart string, domainID uint, domainName string) (*models.Mailbox, bool, error) {
	fullAddress := fmt.Sprintf("%s@%s", localPart, domainName)

	mailbox, err := r.GetByAddress(ctx, fullAddress)
	if err == nil {
		return mailbox, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	mailbox = &models.Mailbox{
		LocalPart:   localPart,
		DomainID:    domainID,
		FullAddress: fullAddress,
	}

	if err := r.Create(ctx, mailbox); err != nil {
		// Concurrent delivery may have provisioned it between the
		// lookup and the insert
		if errors.Is(err, ErrDuplicateEntry) {
			mailbox, err = r.GetByAddress(ctx, fullAddress)
			if err != nil {
				return nil, false, err
			}
			return mailbox, false, nil
		}
		return nil, false, err
	}

	return mailbox, true, nil
}

// ListByDomain retrieves a domain's mailboxes newest first, each with its
// unread and spam message counts
func (r *mailboxRepository) ListByDomain(ctx context.Context, domainID uint, limit, offset int) ([]models.MailboxSummary, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Mailbox{}).Where("domain_id = ?", domainID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count mailboxes: %w", err)
	}

	query := `
		SELECT
			m.*,
			COALESCE((SELECT COUNT(*) FROM messages msg WHERE msg.mailbox_id = m.id AND msg.is_read = false), 0) AS unread_count,
			COALESCE((SELECT COUNT(*) FROM messages msg WHERE msg.mailbox_id = m.id AND msg.is_spam = true), 0) AS spam_count
		FROM mailboxes m
		WHERE m.domain_id = ?
		ORDER BY m.created_at DESC
		LIMIT ? OFFSET ?
	`

	var summaries []models.MailboxSummary
	if err := r.db.WithContext(ctx).Raw(query, domainID, limit, offset).Scan(&summaries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list mailboxes: %w", err)
	}

	return summaries, total, nil
}

// UpdateLastAccessed updates the last_accessed_at timestamp for a mailbox
func (r *mailboxRepository) UpdateLastAccessed(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Mailbox{}).Where("id = ?", id).Update("last_accessed_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to update last accessed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a mailbox by its ID (cascade deletes messages and attachments)
func (r *mailboxRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Mailbox{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete mailbox: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
