package persistence

import (
	"context"
	"errors"

	"github.com/clinic/backend/internal/domain/catalog"
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductUnitRepository implements ProductUnitRepository using GORM
type GormProductUnitRepository struct {
	db *gorm.DB
}

// NewGormProductUnitRepository creates a new GormProductUnitRepository
func NewGormProductUnitRepository(db *gorm.DB) *GormProductUnitRepository {
	return &GormProductUnitRepository{db: db}
}

// FindByID finds a product unit by its ID
func (r *GormProductUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductUnit, error) {
	var unit catalog.ProductUnit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &unit, nil
}

// FindByProductID finds all units for a product, ordered by sort order
func (r *GormProductUnitRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]catalog.ProductUnit, error) {
	var units []catalog.ProductUnit
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order ASC, created_at ASC").
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// FindDefaultByProductID finds the default unit for a product
func (r *GormProductUnitRepository) FindDefaultByProductID(ctx context.Context, productID uuid.UUID) (*catalog.ProductUnit, error) {
	var unit catalog.ProductUnit
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_default = ?", productID, true).
		Order("sort_order ASC, created_at ASC").
		First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &unit, nil
}

// Save creates or updates a product unit
func (r *GormProductUnitRepository) Save(ctx context.Context, unit *catalog.ProductUnit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// Delete deletes a product unit
func (r *GormProductUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.ProductUnit{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormProductUnitRepository implements ProductUnitRepository
var _ catalog.ProductUnitRepository = (*GormProductUnitRepository)(nil)
