package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/opensky-suite/openmail-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ThreadRepository defines the interface for thread aggregate data access.
// Thread rows are derived data: the processing pipeline recomputes them from
// member messages and upserts the result here.
type ThreadRepository interface {
	Upsert(ctx context.Context, thread *models.Thread) error
	GetByID(ctx context.Context, id string) (*models.Thread, error)
	ListByMailbox(ctx context.Context, mailboxID uint, limit, offset int) ([]models.Thread, int64, error)
	Delete(ctx context.Context, id string) error
}

// threadRepository implements ThreadRepository using GORM
type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new ThreadRepository instance
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// Upsert creates the thread row or replaces its derived columns
func (r *threadRepository) Upsert(ctx context.Context, thread *models.Thread) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subject", "snippet", "message_count", "unread_count",
			"has_attachments", "is_starred", "is_important",
			"is_archived", "is_trashed", "last_message_at", "updated_at",
		}),
	}).Create(thread)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert thread: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a thread by its ID
func (r *threadRepository) GetByID(ctx context.Context, id string) (*models.Thread, error) {
	var thread models.Thread
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&thread)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread by ID: %w", result.Error)
	}
	return &thread, nil
}

// ListByMailbox retrieves threads for a mailbox with pagination, newest
// conversation first
func (r *threadRepository) ListByMailbox(ctx context.Context, mailboxID uint, limit, offset int) ([]models.Thread, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Thread{}).Where("mailbox_id = ?", mailboxID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count threads: %w", err)
	}

	var threads []models.Thread
	result := r.db.WithContext(ctx).
		Where("mailbox_id = ?", mailboxID).
		Order("last_message_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&threads)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list threads: %w", result.Error)
	}
	return threads, total, nil
}

// Delete removes a thread row. Member messages are not touched; thread
// cleanup after the last message is removed is the caller's responsibility.
func (r *threadRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Thread{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete thread: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
