package database

import (
	"context"

	"gorm.io/gorm"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Save(ctx context.Context, rec *RunRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}
