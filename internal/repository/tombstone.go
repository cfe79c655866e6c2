package repository

import (
	"context"

	"mosaic/internal/models"

	"gorm.io/gorm"
)

// TombstoneRepository tracks pending post-deletion content sweeps.
type TombstoneRepository interface {
	Pending(ctx context.Context) ([]models.DeletionTombstone, error)
	RecordAttempt(ctx context.Context, id uint) error
	Clear(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type tombstoneRepository struct {
	db *gorm.DB
}

// NewTombstoneRepository creates a new tombstone repository
func NewTombstoneRepository(db *gorm.DB) TombstoneRepository {
	return &tombstoneRepository{db: db}
}

func (r *tombstoneRepository) Pending(ctx context.Context) ([]models.DeletionTombstone, error) {
	var tombstones []models.DeletionTombstone
	if err := r.db.WithContext(ctx).Order("id").Find(&tombstones).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tombstones, nil
}

func (r *tombstoneRepository) RecordAttempt(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.DeletionTombstone{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tombstoneRepository) Clear(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.DeletionTombstone{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tombstoneRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.DeletionTombstone{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
