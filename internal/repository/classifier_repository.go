package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/opensky-suite/openmail-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClassifierRepository persists exported classifier model snapshots across
// process restarts. The snapshot payload is opaque JSON produced by the
// spamfilter package.
type ClassifierRepository interface {
	Save(ctx context.Context, name, snapshot string) error
	Load(ctx context.Context, name string) (string, error)
}

// classifierRepository implements ClassifierRepository using GORM
type classifierRepository struct {
	db *gorm.DB
}

// NewClassifierRepository creates a new ClassifierRepository instance
func NewClassifierRepository(db *gorm.DB) ClassifierRepository {
	return &classifierRepository{db: db}
}

// Save upserts the named model snapshot
func (r *classifierRepository) Save(ctx context.Context, name, snapshot string) error {
	state := &models.ClassifierState{Name: name, Snapshot: snapshot}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"snapshot", "updated_at"}),
	}).Create(state)
	if result.Error != nil {
		return fmt.Errorf("failed to save classifier state: %w", result.Error)
	}
	return nil
}

// Load retrieves the named model snapshot, or ErrNotFound when the
// classifier has never been persisted
func (r *classifierRepository) Load(ctx context.Context, name string) (string, error) {
	var state models.ClassifierState
	result := r.db.WithContext(ctx).Where("name = ?", name).First(&state)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load classifier state: %w", result.Error)
	}
	return state.Snapshot, nil
}
