package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductUnitRepository defines the interface for product unit persistence
type ProductUnitRepository interface {
	// FindByID finds a product unit by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductUnit, error)

	// FindByProductID finds all units for a product, ordered by sort order
	FindByProductID(ctx context.Context, productID uuid.UUID) ([]ProductUnit, error)

	// FindDefaultByProductID finds the default unit for a product
	FindDefaultByProductID(ctx context.Context, productID uuid.UUID) (*ProductUnit, error)

	// Save creates or updates a product unit
	Save(ctx context.Context, unit *ProductUnit) error

	// Delete deletes a product unit
	Delete(ctx context.Context, id uuid.UUID) error
}
