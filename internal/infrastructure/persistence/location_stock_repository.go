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

// GormLocationStockRepository implements LocationStockRepository using GORM
type GormLocationStockRepository struct {
	db *gorm.DB
}

// NewGormLocationStockRepository creates a new GormLocationStockRepository
func NewGormLocationStockRepository(db *gorm.DB) *GormLocationStockRepository {
	return &GormLocationStockRepository{db: db}
}

// FindByBatchAndLocation finds the authoritative stock row for a batch at a
// location. Rows are ordered by creation time so the earliest row wins if the
// unique index ever let duplicates through.
func (r *GormLocationStockRepository) FindByBatchAndLocation(ctx context.Context, batchID, locationID uuid.UUID) (*inventory.LocationStock, error) {
	var stock inventory.LocationStock
	if err := r.db.WithContext(ctx).
		Where("batch_id = ? AND location_id = ?", batchID, locationID).
		Order("created_at ASC").
		First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// FindByBatch finds all location rows holding a batch
func (r *GormLocationStockRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]inventory.LocationStock, error) {
	var stocks []inventory.LocationStock
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindByLocation finds all stock rows at a location
func (r *GormLocationStockRepository) FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]inventory.LocationStock, error) {
	var stocks []inventory.LocationStock
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LocationStock{}).
			Where("location_id = ?", locationID),
		filter,
	)
	if err := query.Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindAll finds stock rows matching the filter
func (r *GormLocationStockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.LocationStock, error) {
	var stocks []inventory.LocationStock
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.LocationStock{}), filter)
	if err := query.Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// Save creates or updates a stock row
func (r *GormLocationStockRepository) Save(ctx context.Context, stock *inventory.LocationStock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

// Delete deletes a stock row
func (r *GormLocationStockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.LocationStock{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormLocationStockRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(batch_number) LIKE ? OR LOWER(product_name) LIKE ? OR LOWER(location_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	orderBy := ValidateSortField(filter.OrderBy, LocationStockSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).Limit(filter.Limit())
}

// Ensure GormLocationStockRepository implements LocationStockRepository
var _ inventory.LocationStockRepository = (*GormLocationStockRepository)(nil)
