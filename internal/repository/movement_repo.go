package repository

import (
	"go-storefront-api/internal/model"

	"gorm.io/gorm"
)

type MovementRepository interface {
	Create(tx *gorm.DB, movement *model.StockMovement) error
	FindRecent(limit int) ([]model.StockMovement, error)
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Create(tx *gorm.DB, movement *model.StockMovement) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(movement).Error
}

func (r *movementRepo) FindRecent(limit int) ([]model.StockMovement, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	movements := []model.StockMovement{}
	err := r.db.Preload("Product").
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}
