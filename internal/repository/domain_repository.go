package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/opensky-suite/openmail-backend/internal/models"
	"gorm.io/gorm"
)

// DomainRepository defines the interface for domain data access. Domains
// gate SMTP acceptance: mail for an unknown or inactive domain is rejected
// at RCPT time.
type DomainRepository interface {
	Create(ctx context.Context, domain *models.Domain) error
	GetByID(ctx context.Context, id uint) (*models.Domain, error)
	GetByName(ctx context.Context, name string) (*models.Domain, error)
	List(ctx context.Context, activeOnly bool) ([]models.Domain, error)
	Update(ctx context.Context, domain *models.Domain) error
	Delete(ctx context.Context, id uint) error
}

type domainRepository struct {
	db *gorm.DB
}

// NewDomainRepository creates a new DomainRepository instance
func NewDomainRepository(db *gorm.DB) DomainRepository {
	return &domainRepository{db: db}
}

// Create creates a new domain
func (r *domainRepository) Create(ctx context.Context, domain *models.Domain) error {
	if err := r.db.WithContext(ctx).Create(domain).Error; err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("domain with name '%s' already exists: %w", domain.Name, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create domain: %w", err)
	}
	return nil
}

// GetByID retrieves a domain by its ID
func (r *domainRepository) GetByID(ctx context.Context, id uint) (*models.Domain, error) {
	var domain models.Domain
	if err := r.db.WithContext(ctx).First(&domain, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get domain by ID: %w", err)
	}
	return &domain, nil
}

// GetByName retrieves a domain by its name. The SMTP session uses this to
// validate recipient domains.
func (r *domainRepository) GetByName(ctx context.Context, name string) (*models.Domain, error) {
	var domain models.Domain
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&domain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get domain by name: %w", err)
	}
	return &domain, nil
}

// List retrieves domains ordered by name, optionally only active ones
func (r *domainRepository) List(ctx context.Context, activeOnly bool) ([]models.Domain, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var domains []models.Domain
	if err := query.Find(&domains).Error; err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return domains, nil
}

// Update updates an existing domain
func (r *domainRepository) Update(ctx context.Context, domain *models.Domain) error {
	result := r.db.WithContext(ctx).Save(domain)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("domain with name '%s' already exists: %w", domain.Name, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update domain: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a domain by its ID (cascade deletes mailboxes, messages, attachments)
func (r *domainRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Domain{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete domain: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
