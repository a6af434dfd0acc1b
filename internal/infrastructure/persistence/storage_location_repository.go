package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clinic/backend/internal/domain/inventory"
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStorageLocationRepository implements StorageLocationRepository using GORM
type GormStorageLocationRepository struct {
	db *gorm.DB
}

// NewGormStorageLocationRepository creates a new GormStorageLocationRepository
func NewGormStorageLocationRepository(db *gorm.DB) *GormStorageLocationRepository {
	return &GormStorageLocationRepository{db: db}
}

// FindByID finds a storage location by its ID
func (r *GormStorageLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StorageLocation, error) {
	var location inventory.StorageLocation
	if err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindByCode finds a storage location by its code
func (r *GormStorageLocationRepository) FindByCode(ctx context.Context, code string) (*inventory.StorageLocation, error) {
	var location inventory.StorageLocation
	if err := r.db.WithContext(ctx).First(&location, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindAll finds storage locations matching the filter
func (r *GormStorageLocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StorageLocation, error) {
	var locations []inventory.StorageLocation
	query := r.db.WithContext(ctx).Model(&inventory.StorageLocation{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	orderBy := ValidateSortField(filter.OrderBy, StorageLocationSortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Save creates or updates a storage location
func (r *GormStorageLocationRepository) Save(ctx context.Context, location *inventory.StorageLocation) error {
	return r.db.WithContext(ctx).Save(location).Error
}

// Delete deletes a storage location
func (r *GormStorageLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.StorageLocation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStorageLocationRepository implements StorageLocationRepository
var _ inventory.StorageLocationRepository = (*GormStorageLocationRepository)(nil)
