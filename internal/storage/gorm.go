package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/flavr/backend/internal/models"
)

// GormKV stores collections in the state_entries table.
type GormKV struct {
	db *gorm.DB
}

// NewGormKV creates a GormKV. The state_entries table must already be migrated.
func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

func (g *GormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.StateEntry
	err := g.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state entry %s: %w", key, err)
	}
	return entry.Value, nil
}

func (g *GormKV) Set(ctx context.Context, key string, value []byte) error {
	entry := models.StateEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save state entry %s: %w", key, err)
	}
	return nil
}

func (g *GormKV) Delete(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Delete(&models.StateEntry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete state entry %s: %w", key, err)
	}
	return nil
}
